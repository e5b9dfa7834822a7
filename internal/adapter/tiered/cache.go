// Package tiered layers the in-process cache over the shared NATS KV bucket.
// Capability probes and the skill manifest are served from the local tier;
// the shared tier keeps every relay instance answering consistently after
// one of them invalidates a key.
package tiered

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Strob0t/AgentRelay/internal/port/cache"
)

// Cache pairs a local (in-process) tier with a shared (remote) tier.
//
// Reads fail open: a shared-tier outage degrades to a cache miss so the
// capability probe and skill manifest fall back to recomputing, never to a
// 500. Writes to the shared tier are best-effort for the same reason.
// Deletes are strict on both tiers, because a failed invalidation would
// leave stale capability data visible fleet-wide.
type Cache struct {
	local    cache.Cache
	shared   cache.Cache
	localTTL time.Duration
}

// New creates a tiered cache. localTTL bounds how long entries backfilled
// from the shared tier live locally, so an invalidation from another
// instance takes effect within that window at worst.
func New(local, shared cache.Cache, localTTL time.Duration) *Cache {
	return &Cache{local: local, shared: shared, localTTL: localTTL}
}

// Get serves from the local tier when possible, consulting the shared tier
// on a local miss and backfilling the local tier on a shared hit. Tier
// errors are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := c.local.Get(ctx, key)
	if err != nil {
		slog.Debug("local cache read failed", "key", key, "error", err)
	} else if found {
		return val, true, nil
	}

	val, found, err = c.shared.Get(ctx, key)
	if err != nil {
		slog.Warn("shared cache read failed, serving miss", "key", key, "error", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	if err := c.local.Set(ctx, key, val, c.localTTL); err != nil {
		slog.Debug("local cache backfill failed", "key", key, "error", err)
	}
	return val, true, nil
}

// Set writes to both tiers. The local write must succeed; a shared-tier
// failure is logged and swallowed, since the entry will be recomputed on
// the next miss anyway.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if err := c.shared.Set(ctx, key, value, ttl); err != nil {
		slog.Warn("shared cache write failed", "key", key, "error", err)
	}
	return nil
}

// Delete invalidates the key in both tiers, attempting both even when the
// first fails.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.local.Delete(ctx, key), c.shared.Delete(ctx, key))
}
