package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// SearchService exposes retrieval without generation.
type SearchService interface {
	// Search returns ranked matches with per-signal scores.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error)
}
