package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/config"

	"github.com/redis/go-redis/v9"
)

type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{client: client, ttl: ttl}
}

func statusKey(userID int64) string {
	return fmt.Sprintf("booking_status:%d", userID)
}

func (r *RedisStatusCache) GetStatus(ctx context.Context, userID int64) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, statusKey(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get status from redis: %w", err)
	}
	return val, true, nil
}

func (r *RedisStatusCache) SetStatus(ctx context.Context, userID int64, status string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, statusKey(userID), status, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set status in redis: %w", err)
	}
	return nil
}

func (r *RedisStatusCache) Invalidate(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate status in redis: %w", err)
	}
	return nil
}

func (r *RedisStatusCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%d", userID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}
	return count <= int64(limit), nil
}
