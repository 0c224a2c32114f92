package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService wraps the Redis client with instrumentation. A nil receiver
// or a missing client degrades to cache-off behaviour so the API keeps
// serving when Redis is down.
type CacheService struct {
	client  *redis.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService constructs CacheService.
func NewCacheService(client *redis.Client, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, metrics: metrics, logger: logger}
}

// Get returns the cached value and whether it was present.
func (c *CacheService) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	start := time.Now()
	value, err := c.client.Get(ctx, key).Result()
	hit := err == nil
	c.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Set stores a value with a TTL. Failures are logged, never propagated.
func (c *CacheService) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	start := time.Now()
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.metrics.ObserveCacheWrite(time.Since(start))
}
