package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creativesync/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements Service using Redis, sharing lookup tables across
// pipeline instances. Tables are stored as JSON objects.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis-backed table cache
func NewRedisCache(redisURL string) (Service, error) {
	return newRedisCache(redisURL)
}

// newRedisCache creates the concrete implementation
func newRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

// GetTable retrieves and decodes the cached table for the given key
func (r *RedisCache) GetTable(ctx context.Context, key string) (map[string]int64, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, models.ErrCacheUnavailable
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var table map[string]int64
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached table: %w", err)
	}

	return table, nil
}

// SetTable stores the table in Redis with the specified TTL
func (r *RedisCache) SetTable(ctx context.Context, key string, table map[string]int64, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes a table from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
