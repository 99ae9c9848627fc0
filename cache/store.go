package cache

import (
	"context"
	"time"
)

// Entry - сохраненный ответ страницы
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store хранит ответы с фиксированным TTL, заданным при создании
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry) error
	// Clear удаляет все ключи с префиксом
	Clear(ctx context.Context, prefix string) error
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}
