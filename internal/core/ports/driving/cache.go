package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// CacheService manages the answer cache.
type CacheService interface {
	// Stats reports stored and fresh entry counts.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Clear removes every cached answer.
	Clear(ctx context.Context) error
}
