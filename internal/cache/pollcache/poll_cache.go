package pollcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"pollpulse/internal/cache"
	"pollpulse/internal/models"
)

// pollCache implements Service over a generic cache
type pollCache struct {
	cache      cache.Service
	defaultTTL time.Duration
}

// New creates a new poll response cache
func New(cache cache.Service, defaultTTL time.Duration) Service {
	return &pollCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// GetOrCompute implements the fetch-or-compute contract. There is no
// single-flight coalescing: two concurrent misses on a cold key may both
// invoke the producer.
func (p *pollCache) GetOrCompute(ctx context.Context, key string, producer Producer, ttl time.Duration) (*models.PollsResponse, bool, error) {
	if cached, err := p.get(ctx, key); err == nil {
		return cached, true, nil
	}

	response, err := producer(ctx)
	if err != nil {
		// Never cache a failure; a stale entry for this key, if any, is
		// left untouched
		return nil, false, err
	}

	cacheTTL := ttl
	if cacheTTL == 0 {
		cacheTTL = p.defaultTTL
	}

	if err := p.cache.Set(ctx, key, response, cacheTTL); err != nil {
		// A write failure degrades to uncached operation, it does not
		// fail the request
		return response, false, nil
	}

	return response, false, nil
}

// Invalidate removes one key unconditionally
func (p *pollCache) Invalidate(ctx context.Context, key string) error {
	return p.cache.Delete(ctx, key)
}

// Clear removes all cached entries
func (p *pollCache) Clear(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// Stats enumerates the current keyspace
func (p *pollCache) Stats(ctx context.Context) (*models.CacheStats, error) {
	keys, err := p.cache.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate cache keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	sort.Strings(keys)

	return &models.CacheStats{
		EntryCount: len(keys),
		Keys:       keys,
	}, nil
}

// get reads and decodes a cached poll response
func (p *pollCache) get(ctx context.Context, key string) (*models.PollsResponse, error) {
	value, err := p.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *models.PollsResponse:
		// Memory cache returns the actual object
		return v, nil
	case models.PollsResponse:
		return &v, nil
	case string:
		// Redis cache returns a JSON string, unmarshal it
		var response models.PollsResponse
		if err := json.Unmarshal([]byte(v), &response); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached poll response: %w", err)
		}
		return &response, nil
	default:
		return nil, fmt.Errorf("unexpected type in cache: %T", v)
	}
}

// Key builds the cache key for a logical poll query. Keys are opaque to the
// cache; keeping construction here keeps admin invalidation predictable.
func Key(category, state, candidate, source string) string {
	return fmt.Sprintf("polls:%s:%s:%s:%s", category, state, candidate, source)
}
