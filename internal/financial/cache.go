// internal/financial/cache.go
package financial

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 5 * time.Minute

// CachedFetcher reads through redis before calling the wrapped fetcher.
// Cache failures are ignored; only the upstream error is reported.
type CachedFetcher struct {
	next   Fetcher
	redis  *redis.Client
	source Source
	ttl    time.Duration
}

func NewCachedFetcher(next Fetcher, source Source, rdb *redis.Client, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{next: next, redis: rdb, source: source, ttl: ttl}
}

func CacheKey(source Source, applicantID string) string {
	return "fin:" + string(source) + ":" + applicantID
}

func (c *CachedFetcher) Fetch(ctx context.Context, applicantID string) (Response, error) {
	cacheKey := CacheKey(c.source, applicantID)
	if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
		var resp Response
		if err := json.Unmarshal([]byte(val), &resp); err == nil {
			return resp, nil
		}
	}

	resp, err := c.next.Fetch(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(resp)
	c.redis.Set(ctx, cacheKey, data, c.ttl)

	return resp, nil
}

// WithCache wraps every fetcher in services with a redis read-through cache.
func WithCache(services Services, rdb *redis.Client, ttl time.Duration) Services {
	if rdb == nil {
		return services
	}
	cached := make(Services, len(services))
	for src, f := range services {
		cached[src] = NewCachedFetcher(f, src, rdb, ttl)
	}
	return cached
}
