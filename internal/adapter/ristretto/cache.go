// Package ristretto implements the local cache tier on dgraph-io/ristretto.
// The relay caches a handful of rendered responses (the capability map, the
// skill manifest), so the cache is sized by total byte cost rather than
// entry count and admission pressure is effectively zero.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// counters is the number of access counters ristretto keeps for admission.
// The relay's working set is tiny, so a small fixed pool is plenty.
const counters = 1 << 12

// Cache is an in-process byte cache with TTL eviction.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache holding at most maxCostBytes of values.
func New(maxCostBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value under key for ttl. The entry's cost is its byte length.
// Admission is asynchronous; call Wait to observe the write.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Wait blocks until pending writes have been applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
