// Package cache provides an in-memory cache of fetched ground tracks.
//
// Entries are keyed by (satellite, window, step) and stay fresh for a
// TTL. When the upstream is unreachable, a recently expired entry is
// served instead of failing the caller, so a flapping upstream degrades
// the display to a slightly old track rather than an empty globe.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/metrics"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/orbit"
)

// Fetcher is the upstream track source. Satisfied by *orbit.Client.
type Fetcher interface {
	FetchTrack(ctx context.Context, req orbit.Request) (*orbit.Snapshot, error)
}

// Config holds cache configuration loaded from environment variables.
type Config struct {
	TTL      time.Duration // freshness window (default: 30s)
	StaleFor time.Duration // serve-stale window past the TTL on upstream failure (default: 10m)
}

type key struct {
	sat    string
	window time.Duration
	step   time.Duration
}

type entry struct {
	snap      *orbit.Snapshot
	fetchedAt time.Time
}

// TrackCache caches track snapshots in front of a Fetcher.
// Safe for concurrent use by multiple goroutines.
type TrackCache struct {
	mu      sync.RWMutex
	entries map[key]*entry

	config  Config
	fetcher Fetcher
	logger  *slog.Logger

	// Counters (lock-free).
	hits      atomic.Int64
	misses    atomic.Int64
	staleHits atomic.Int64
}

// New creates a track cache over the given upstream.
func New(config Config, fetcher Fetcher, logger *slog.Logger) *TrackCache {
	logger.Info("track cache initialized",
		"component", "cache",
		"ttl_seconds", config.TTL.Seconds(),
		"stale_for_seconds", config.StaleFor.Seconds(),
	)
	return &TrackCache{
		entries: make(map[key]*entry),
		config:  config,
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchTrack implements Fetcher. Fresh entries are served from memory;
// anything else goes upstream, falling back to a stale entry when the
// upstream fails.
func (c *TrackCache) FetchTrack(ctx context.Context, req orbit.Request) (*orbit.Snapshot, error) {
	k := key{sat: req.Satellite, window: req.Window, step: req.Step}
	now := time.Now()

	c.mu.RLock()
	e := c.entries[k]
	c.mu.RUnlock()

	if e != nil && now.Sub(e.fetchedAt) < c.config.TTL {
		c.hits.Add(1)
		metrics.IncTrackCache("hit")
		return e.snap, nil
	}

	snap, err := c.fetcher.FetchTrack(ctx, req)
	if err != nil {
		if e != nil && now.Sub(e.fetchedAt) < c.config.TTL+c.config.StaleFor {
			c.staleHits.Add(1)
			metrics.IncTrackCache("stale_hit")
			c.logger.Warn("upstream fetch failed, serving stale track",
				"component", "cache",
				"sat", req.Satellite,
				"age_seconds", int(now.Sub(e.fetchedAt).Seconds()),
				"error", err,
			)
			return e.snap, nil
		}
		c.misses.Add(1)
		metrics.IncTrackCache("miss")
		return nil, err
	}

	c.misses.Add(1)
	metrics.IncTrackCache("miss")

	c.mu.Lock()
	c.entries[k] = &entry{snap: snap, fetchedAt: now}
	c.evictExpiredLocked(now)
	c.mu.Unlock()

	return snap, nil
}

// evictExpiredLocked drops entries past the serve-stale window. Called
// with the write lock held; the map stays small (one entry per viewed
// satellite), so a linear sweep on insert is enough.
func (c *TrackCache) evictExpiredLocked(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.config.TTL+c.config.StaleFor {
			delete(c.entries, k)
		}
	}
}

// Stats reports lookup counters for diagnostics.
func (c *TrackCache) Stats() (hits, misses, staleHits int64) {
	return c.hits.Load(), c.misses.Load(), c.staleHits.Load()
}

// Len returns the number of cached entries.
func (c *TrackCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
