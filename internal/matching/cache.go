package matching

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long per-user activity and trait lookups
// are reused during ranking passes.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// ttlCache memoizes expensive per-user lookups with a time-to-live.
// Expired entries are lazily evicted on read; there is no background
// sweep. One instance per concern (activities, traits) so keys cannot
// collide. Safe for concurrent use; GetOrCompute collapses concurrent
// lookups for the same key into a single upstream fetch.
type ttlCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
}

func newTTLCache[T any](ttl time.Duration) *ttlCache[T] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ttlCache[T]{
		entries: make(map[string]cacheEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *ttlCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false
	}

	if c.now().After(entry.expiresAt) || c.now().Equal(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		var zero T
		return zero, false
	}

	return entry.value, true
}

// Has reports whether a live entry exists for key.
func (c *ttlCache[T]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key with the cache's default TTL.
func (c *ttlCache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *ttlCache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[T]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, or runs compute to fill
// it. Concurrent calls for the same key share one compute invocation.
// Compute errors are not cached.
func (c *ttlCache[T]) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have filled the entry while we
		// waited on the flight group.
		if value, ok := c.Get(key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// Len returns the number of stored entries, expired or not. Used by
// metrics collection.
func (c *ttlCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
