package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Claudio1052/Limpeza/internal/models"

	"github.com/redis/go-redis/v9"
)

// resultCacheKey is the one Redis key the cache occupies. Storing every list
// result under the same key gives the same replace-on-write behavior as the
// in-memory cache.
const resultCacheKey = "limpeza:list_result"

type cachedResult struct {
	Key    string             `json:"key"`
	Result *models.ListResult `json:"result"`
}

// RedisResultCache holds the single most recent list result in Redis, so the
// cache survives restarts and is shared between replicas.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func (c *RedisResultCache) Get(ctx context.Context, key string) (*models.ListResult, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	val, err := c.client.Get(ctx, resultCacheKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}

	var entry cachedResult
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	if entry.Key != key {
		return nil, false, nil
	}
	return entry.Result, true, nil
}

func (c *RedisResultCache) Put(ctx context.Context, key string, result *models.ListResult) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(cachedResult{Key: key, Result: result})
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, resultCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

func (c *RedisResultCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := c.client.Del(ctx, resultCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
