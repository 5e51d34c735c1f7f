package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// AnalyticsService summarises query activity.
type AnalyticsService interface {
	// Summary returns totals, recent and popular queries and document usage.
	Summary(ctx context.Context) (*domain.Analytics, error)
}
