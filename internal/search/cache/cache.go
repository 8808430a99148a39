package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alex-user-go/feriados/internal/search"
)

// ResultCache caches search results per year.
type ResultCache interface {
	// GetOrFetch retrieves the result for key or executes fetch.
	// The boolean reports a cache hit.
	GetOrFetch(ctx context.Context, key string, fetch func() (*search.Result, error)) (*search.Result, bool, error)
	// Invalidate removes a specific key from the cache.
	Invalidate(ctx context.Context, key string)
	// Close releases background resources.
	Close()
}

// Key generates a cache key for a year.
func Key(year int) string {
	return fmt.Sprintf("feriados:%d", year)
}

// Cache keeps results in memory for a fixed TTL. Concurrent misses for the
// same key share one fetch.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	group   singleflight.Group
	done    chan struct{}
}

type cacheEntry struct {
	result    *search.Result
	expiresAt time.Time
}

// NewCache creates a new Cache with the specified TTL.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	close(c.done)
}

// GetOrFetch returns the cached result for key, or runs fetch once for all
// concurrent callers. A caller whose ctx ends stops waiting; the fetch itself
// keeps running and its result is still stored. Errors and nil results are
// not cached.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func() (*search.Result, error)) (*search.Result, bool, error) {
	if result, ok := c.get(key, time.Now()); ok {
		return result, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		result, err := fetch()
		if err == nil && result != nil {
			c.mu.Lock()
			c.entries[key] = cacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
			c.mu.Unlock()
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

func (c *Cache) get(key string, now time.Time) (*search.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		return nil, false
	}
	return e.result, true
}

// Invalidate removes a specific key from the cache.
func (c *Cache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// sweep drops entries expired at now and returns how many remain.
func (c *Cache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			c.sweep(now)
		case <-c.done:
			return
		}
	}
}

// Nop never stores anything; every call runs fetch.
type Nop struct{}

// GetOrFetch always executes fetch.
func (Nop) GetOrFetch(_ context.Context, _ string, fetch func() (*search.Result, error)) (*search.Result, bool, error) {
	result, err := fetch()
	return result, false, err
}

// Invalidate does nothing.
func (Nop) Invalidate(context.Context, string) {}

// Close does nothing.
func (Nop) Close() {}
