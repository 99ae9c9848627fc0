package services

import (
	"context"
	"fmt"
	"yatube/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient подключается к redis из конфигурации и проверяет соединение
func NewRedisClient(ctx context.Context, conf *config.ConfigSchema) (*redis.Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("AppConfig is not loaded")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr(),
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
