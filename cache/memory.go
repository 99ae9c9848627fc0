package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore - LRU в памяти процесса с истечением записей по TTL
type MemoryStore struct {
	lru *expirable.LRU[string, Entry]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 1024
	}
	return &MemoryStore{lru: expirable.NewLRU[string, Entry](size, nil, ttlOrDefault(ttl))}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	entry, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	s.lru.Add(key, *entry)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, prefix string) error {
	for _, key := range s.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.lru.Remove(key)
		}
	}
	return nil
}
