package providers

import (
	"context"
	"encoding/json"
	"time"

	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "evidly:provider:"

// CachedProvider caches facility and score lookups in Redis. These change on
// the order of days; every other lookup goes straight to the wrapped provider.
// Cache failures never fail a lookup.
type CachedProvider struct {
	DataProvider
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(inner DataProvider, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{
		DataProvider: inner,
		redis:        client,
		ttl:          ttl,
		logger:       log,
	}
}

func (c *CachedProvider) Facility(ctx context.Context, locationID string) (*models.FacilityInfo, error) {
	key := cacheKeyPrefix + "facility:" + locationID

	var cached models.FacilityInfo
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	f, err := c.DataProvider.Facility(ctx, locationID)
	if err != nil || f == nil {
		return f, err
	}
	c.set(ctx, key, f)
	return f, nil
}

func (c *CachedProvider) Scores(ctx context.Context, locationID string) (*models.ComplianceScoreSet, error) {
	key := cacheKeyPrefix + "scores:" + locationID

	var cached models.ComplianceScoreSet
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	s, err := c.DataProvider.Scores(ctx, locationID)
	if err != nil || s == nil {
		return s, err
	}
	c.set(ctx, key, s)
	return s, nil
}

// Invalidate drops the cached entries of a location.
func (c *CachedProvider) Invalidate(ctx context.Context, locationID string) error {
	return c.redis.Del(ctx,
		cacheKeyPrefix+"facility:"+locationID,
		cacheKeyPrefix+"scores:"+locationID,
	).Err()
}

func (c *CachedProvider) get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("provider cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn("discarding unreadable provider cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (c *CachedProvider) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("provider cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
