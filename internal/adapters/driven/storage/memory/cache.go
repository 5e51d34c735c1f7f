package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure ResultCache implements the interface.
var _ driven.ResultCache = (*ResultCache)(nil)

// ResultCache is an in-memory implementation of driven.ResultCache.
// Expired entries are never evicted; they only stop being returned.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
	ttl     time.Duration
	now     driven.Clock
}

// CacheOption configures a ResultCache.
type CacheOption func(*ResultCache)

// WithClock injects the time source used for freshness checks.
func WithClock(now driven.Clock) CacheOption {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewResultCache creates an in-memory cache. A non-positive ttl uses
// domain.DefaultCacheTTL.
func NewResultCache(ttl time.Duration, opts ...CacheOption) *ResultCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	c := &ResultCache{
		entries: make(map[string]domain.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry for fingerprint if it is still fresh.
func (c *ResultCache) Get(_ context.Context, fingerprint string) (*domain.CacheEntry, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok || !entry.IsFresh(c.now(), c.ttl) {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores an entry. A zero CreatedAt is stamped with the current time.
func (c *ResultCache) Put(_ context.Context, entry *domain.CacheEntry) error {
	if entry == nil || entry.Fingerprint == "" {
		return domain.ErrInvalidInput
	}
	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = c.now()
	}
	c.mu.Lock()
	c.entries[stored.Fingerprint] = stored
	c.mu.Unlock()
	return nil
}

// Clear removes every entry.
func (c *ResultCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]domain.CacheEntry)
	c.mu.Unlock()
	return nil
}

// Stats reports stored and fresh entry counts.
func (c *ResultCache) Stats(_ context.Context) (domain.CacheStats, error) {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := domain.CacheStats{
		EntryCount: len(c.entries),
		TTLSeconds: int(c.ttl / time.Second),
	}
	for _, e := range c.entries {
		if e.IsFresh(now, c.ttl) {
			stats.ValidCount++
		}
	}
	return stats, nil
}

// TTL returns the freshness window.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}
