package database

import (
	"context"

	"github.com/redis/go-redis/v9"

	"example.com/trip-planner/backend/internal/config"
)

// OpenRedis создает клиент Redis и проверяет соединение.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := withRetry(ctx, "redis", func(ctx context.Context) error {
		return ping(ctx, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
