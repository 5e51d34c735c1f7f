package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure CacheService implements the interface.
var _ driving.CacheService = (*CacheService)(nil)

// CacheService manages the answer cache.
type CacheService struct {
	cache driven.ResultCache
}

// NewCacheService creates a new cache service.
func NewCacheService(cache driven.ResultCache) *CacheService {
	return &CacheService{cache: cache}
}

// Stats reports stored and fresh entry counts.
func (s *CacheService) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// Clear removes every cached answer.
func (s *CacheService) Clear(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	logger.Info("Cache cleared")
	return nil
}
