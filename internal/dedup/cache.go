package dedup

import (
	"context"
	"strings"
	"time"

	"job-applier/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const (
	seenKeyPrefix  = "seen:url:"
	DefaultSeenTTL = 30 * 24 * time.Hour
)

// SeenCache remembers url -> job id for recently ingested postings so that
// re-scraped postings skip the database round trip.
type SeenCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSeenCache(client *redis.Client, ttl time.Duration) *SeenCache {
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}
	return &SeenCache{redis: client, ttl: ttl}
}

// Lookup returns the job id previously remembered for url.
func (c *SeenCache) Lookup(ctx context.Context, url string) (string, bool, error) {
	id, err := c.redis.Get(ctx, seenKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewCacheError("seen lookup", err)
	}
	return id, true, nil
}

// Remember stores url -> jobID with the cache TTL.
func (c *SeenCache) Remember(ctx context.Context, url, jobID string) error {
	if err := c.redis.Set(ctx, seenKey(url), jobID, c.ttl).Err(); err != nil {
		return errors.NewCacheError("seen remember", err)
	}
	return nil
}

// Forget drops url from the cache, used when a job is purged.
func (c *SeenCache) Forget(ctx context.Context, url string) error {
	if err := c.redis.Del(ctx, seenKey(url)).Err(); err != nil {
		return errors.NewCacheError("seen forget", err)
	}
	return nil
}

func seenKey(url string) string {
	return seenKeyPrefix + strings.ToLower(url)
}
