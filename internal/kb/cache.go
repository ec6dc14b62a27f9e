package kb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// LoadFunc produces a fresh validated KnowledgeBase snapshot.
type LoadFunc func(ctx context.Context) (*KnowledgeBase, error)

// Cache holds the current KB snapshot with a TTL. Refresh happens through
// the single Get accessor; a successful refresh swaps the snapshot
// atomically, and a failed refresh keeps serving the previous snapshot so
// a transient source error never takes answers offline.
type Cache struct {
	mu       sync.Mutex
	load     LoadFunc
	ttl      time.Duration
	now      func() time.Time
	snap     *KnowledgeBase
	loadedAt time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a KB cache. ttl <= 0 disables expiry (load once, reload
// only via Invalidate).
func NewCache(load LoadFunc, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{load: load, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, refreshing it when the TTL has lapsed.
func (c *Cache) Get(ctx context.Context) (*KnowledgeBase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := c.snap != nil && (c.ttl <= 0 || c.now().Sub(c.loadedAt) < c.ttl)
	if fresh {
		return c.snap, nil
	}

	snap, err := c.load(ctx)
	if err != nil {
		if c.snap != nil {
			log.Warn().Err(err).Msg("kb_refresh_failed_serving_stale")
			return c.snap, nil
		}
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}
	c.snap = snap
	c.loadedAt = c.now()
	return c.snap, nil
}

// Invalidate drops the cached snapshot so the next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
}
