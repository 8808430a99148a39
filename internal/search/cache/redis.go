package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alex-user-go/feriados/internal/search"
)

// RedisCache stores search results in Redis so several server instances
// share them. Concurrent misses within one instance are collapsed.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewRedisCache creates a new RedisCache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Ping checks the connection to Redis.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetOrFetch retrieves from Redis or executes the fetch function.
// Redis failures are logged and degrade to a plain fetch.
func (c *RedisCache) GetOrFetch(ctx context.Context, key string, fetch func() (*search.Result, error)) (*search.Result, bool, error) {
	if result, ok := c.get(ctx, key); ok {
		return result, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		result, err := fetch()
		if err == nil && result != nil {
			c.set(key, result)
		}
		return result, err
	})

	select {
	case res := <-ch:
		result, _ := res.Val.(*search.Result)
		return result, false, res.Err
	case <-ctx.Done():
		return nil, false, context.Cause(ctx)
	}
}

func (c *RedisCache) get(ctx context.Context, key string) (*search.Result, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var result search.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &result, true
}

func (c *RedisCache) set(key string, result *search.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	// Written outside the request context.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes a specific key from Redis.
func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("redis del failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("redis close failed", zap.Error(err))
	}
}
