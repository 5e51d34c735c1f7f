package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

func TestCacheService_StatsAndClear(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := memory.NewResultCache(time.Hour, memory.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, &domain.CacheEntry{Fingerprint: "fresh", Answer: "a"}))
	require.NoError(t, cache.Put(ctx, &domain.CacheEntry{Fingerprint: "stale", Answer: "b", CreatedAt: now.Add(-2 * time.Hour)}))
	s := NewCacheService(cache)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CacheStats{EntryCount: 2, ValidCount: 1, TTLSeconds: 3600}, stats)

	require.NoError(t, s.Clear(ctx))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.EntryCount)
}

func TestCacheService_Errors(t *testing.T) {
	s := NewCacheService(failingCache{})

	_, err := s.Stats(context.Background())
	assert.ErrorIs(t, err, errCacheDown)
	assert.ErrorIs(t, s.Clear(context.Background()), errCacheDown)
}
