package roadmap

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"m365roadmap/internal/logging"
)

// TTL is how long a fetched snapshot is served before the feed is fetched
// again.
const TTL = 5 * time.Minute

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger injects a logger instead of the package default.
func WithLogger(logger *logging.AppLogger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache serves the latest Snapshot and refetches it once it is older than
// TTL.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *logging.AppLogger

	slot atomic.Pointer[Snapshot]
}

// NewCache creates an empty cache backed by fetcher.
func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     TTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.GetDefault()
	}
	return c
}

// Snapshot returns the cached snapshot while it is fresh and fetches a new
// one otherwise. A failed fetch returns the error and leaves the slot as it
// was.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	now := c.now()
	if snap := c.slot.Load(); snap != nil && now.Sub(snap.CapturedAt) < c.ttl {
		c.logger.Debug("Roadmap cache hit", "age", now.Sub(snap.CapturedAt), "items", len(snap.Items))
		return snap, nil
	}

	c.logger.Debug("Roadmap cache miss, fetching feed")
	start := time.Now()
	items, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.logger.Error("Failed to refresh roadmap feed", "error", err)
		return nil, fmt.Errorf("refresh roadmap: %w", err)
	}
	c.logger.LogPerformance("roadmap_fetch", start)

	snap := &Snapshot{Items: items, CapturedAt: c.now()}
	c.slot.Store(snap)
	c.logger.Info("Roadmap feed refreshed", "items", len(items))
	return snap, nil
}
