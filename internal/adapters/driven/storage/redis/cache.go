// Package redis provides a Redis-backed result cache so several planroom
// processes can share answers.
//
// All entries live in one hash keyed by fingerprint. Clear deletes the
// hash in a single command, which keeps it atomic for concurrent readers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure ResultCache implements the interface.
var _ driven.ResultCache = (*ResultCache)(nil)

// DefaultKey is the hash that holds cache entries.
const DefaultKey = "planroom:cache"

const dialTimeout = 5 * time.Second

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Key overrides DefaultKey, mainly so tests can isolate themselves.
	Key string

	TTL time.Duration
	Now driven.Clock
}

// ResultCache stores answers in a Redis hash.
type ResultCache struct {
	rdb *goredis.Client
	key string
	ttl time.Duration
	now driven.Clock
}

// NewResultCache connects to Redis and verifies the connection.
func NewResultCache(ctx context.Context, cfg Config) (*ResultCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return newResultCache(rdb, cfg), nil
}

func newResultCache(rdb *goredis.Client, cfg Config) *ResultCache {
	c := &ResultCache{rdb: rdb, key: cfg.Key, ttl: cfg.TTL, now: cfg.Now}
	if c.key == "" {
		c.key = DefaultKey
	}
	if c.ttl <= 0 {
		c.ttl = domain.DefaultCacheTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get returns the entry for fingerprint if it is still fresh.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, bool, error) {
	raw, err := c.rdb.HGet(ctx, c.key, fingerprint).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		return nil, false, err
	}
	if !entry.IsFresh(c.now(), c.ttl) {
		return nil, false, nil
	}
	return entry, true, nil
}

// Put stores an entry. A zero CreatedAt is stamped with the current time.
func (c *ResultCache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if entry == nil || entry.Fingerprint == "" {
		return domain.ErrInvalidInput
	}
	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = c.now()
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.rdb.HSet(ctx, c.key, stored.Fingerprint, raw).Err(); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (c *ResultCache) Clear(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// Stats reports stored and fresh entry counts.
func (c *ResultCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	values, err := c.rdb.HVals(ctx, c.key).Result()
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("redis stats: %w", err)
	}

	now := c.now()
	stats := domain.CacheStats{
		EntryCount: len(values),
		TTLSeconds: int(c.ttl / time.Second),
	}
	for _, raw := range values {
		entry, err := decodeEntry([]byte(raw))
		if err != nil {
			continue
		}
		if entry.IsFresh(now, c.ttl) {
			stats.ValidCount++
		}
	}
	return stats, nil
}

// TTL returns the freshness window.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Close closes the Redis connection.
func (c *ResultCache) Close() error {
	return c.rdb.Close()
}

func decodeEntry(raw []byte) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}
