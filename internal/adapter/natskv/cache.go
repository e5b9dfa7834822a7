// Package natskv implements the shared cache tier on a NATS JetStream KV
// bucket, so every relay instance behind a load balancer serves the same
// capability map and skill manifest.
package natskv

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Cache adapts a JetStream KeyValue bucket to the cache port. Entry
// lifetime comes from the bucket's TTL, set when the bucket is created;
// the per-call ttl argument is ignored.
type Cache struct {
	kv jetstream.KeyValue
}

func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv}
}

// Get returns the latest revision of key. Keys that were never written,
// or whose delete marker is the latest revision, are misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value(), true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Put(ctx, key, value)
	return err
}

// Delete purges the key, dropping its revision history as well. Cached
// responses carry no audit value, and purging keeps the bucket from
// accumulating tombstones for hot keys that churn on every invalidation.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Purge(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}
