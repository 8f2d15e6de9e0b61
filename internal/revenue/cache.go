package revenue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"creatorpay/internal/logger"
)

// Cache holds non-degraded earnings summaries between reads. A cache failure
// is never fatal; the aggregator just recomputes.
type Cache interface {
	Get(ctx context.Context, creatorID uuid.UUID) (*Summary, bool)
	Set(ctx context.Context, creatorID uuid.UUID, summary *Summary)
	Invalidate(ctx context.Context, creatorID uuid.UUID)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func cacheKey(creatorID uuid.UUID) string {
	return "earnings:" + creatorID.String()
}

func (c *RedisCache) Get(ctx context.Context, creatorID uuid.UUID) (*Summary, bool) {
	data, err := c.client.Get(ctx, cacheKey(creatorID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("earnings cache read failed for %s: %v", creatorID, err)
		}
		return nil, false
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warnf("earnings cache entry corrupt for %s: %v", creatorID, err)
		return nil, false
	}
	return &s, true
}

func (c *RedisCache) Set(ctx context.Context, creatorID uuid.UUID, summary *Summary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(creatorID), data, c.ttl).Err(); err != nil {
		logger.Warnf("earnings cache write failed for %s: %v", creatorID, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, creatorID uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(creatorID)).Err(); err != nil {
		logger.Warnf("earnings cache invalidation failed for %s: %v", creatorID, err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
