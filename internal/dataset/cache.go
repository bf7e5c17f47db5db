package dataset

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"
)

// TableCache is a concurrent-safe LRU of decoded source tables with TTL
// expiration. One cache is built per process and shared by every Loader.
type TableCache struct {
	mu         sync.RWMutex
	entries    map[string]*tableCacheEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	group      singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
}

type tableCacheEntry struct {
	value    any
	loadedAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewTableCache creates a cache holding at most maxEntries tables, each valid
// for ttl. A non-positive ttl never expires entries.
func NewTableCache(maxEntries int, ttl time.Duration) *TableCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &TableCache{
		entries:    make(map[string]*tableCacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached value for key, or false on miss or expiry.
func (c *TableCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.loadedAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return nil, false
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return entry.value, true
}

// Put stores value under key, evicting the least recently used entry at capacity.
func (c *TableCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeFromOrder(key)
	} else {
		for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[key] = &tableCacheEntry{value: value, loadedAt: c.now()}
	c.order = append(c.order, key)
}

// Invalidate drops every entry whose key starts with prefix. An empty prefix clears the cache.
func (c *TableCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.order[:0]
	for _, key := range c.order {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		} else {
			remaining = append(remaining, key)
		}
	}
	c.order = remaining
}

// Stats returns cache performance statistics.
func (c *TableCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

func (c *TableCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// cached returns the table stored under key, calling load on a miss.
// Concurrent misses for the same key share one load. The shared load does not
// inherit the caller's cancellation; a cancelled caller stops waiting while
// the others still get the result. A nil cache always loads.
func cached[T any](ctx context.Context, c *TableCache, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return load(ctx)
	}
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		t, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.Put(key, t)
		return t, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, eris.Wrapf(ctx.Err(), "dataset: waiting for %q", key)
	}
	if res.Err != nil {
		return zero, res.Err
	}
	t, ok := res.Val.(T)
	if !ok {
		return zero, eris.Errorf("dataset: cache entry %q has type %T", key, res.Val)
	}
	return t, nil
}
