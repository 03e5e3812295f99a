package sheetdesk

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes list reads per logical key for a fixed TTL. It is safe for
// concurrent use; concurrent misses on one key share a single producer call.
type Cache struct {
	entries *expirable.LRU[string, [][]string]
	group   singleflight.Group
	metrics *Metrics

	mu  sync.Mutex
	gen map[string]uint64 // bumped by Invalidate so in-flight reads are not stored
}

// NewCache creates a cache holding at most size lists for ttl each.
func NewCache(size int, ttl time.Duration, metrics *Metrics) *Cache {
	return &Cache{
		entries: expirable.NewLRU[string, [][]string](size, nil, ttl),
		metrics: metrics,
		gen:     make(map[string]uint64),
	}
}

// Get returns the live entry for key, or calls producer, stores its result
// and returns it. Producer errors are returned and not cached.
//
// Concurrent misses share one producer call. It runs with ctx's values but
// not its cancellation, so one caller giving up does not fail the others;
// each caller stops waiting when its own ctx is done.
func (c *Cache) Get(ctx context.Context, key string, producer func(context.Context) ([][]string, error)) ([][]string, error) {
	if rows, ok := c.entries.Get(key); ok {
		c.metrics.cacheLookup(true)
		return copyRows(rows), nil
	}
	c.metrics.cacheLookup(false)

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		gen := c.generation(key)
		rows, err := producer(shared)
		if err != nil {
			return nil, err
		}
		rows = copyRows(rows)
		c.mu.Lock()
		if c.gen[key] == gen {
			c.entries.Add(key, rows)
		}
		c.mu.Unlock()
		return rows, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return copyRows(res.Val.([][]string)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate removes the entries for keys immediately.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if key != "" {
			c.gen[key]++
			c.entries.Remove(key)
			c.group.Forget(key)
		}
	}
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[key]
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// copyRows creates a deep copy so callers cannot modify cached rows
func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
