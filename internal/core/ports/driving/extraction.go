package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// ExtractionService produces typed records from the corpus.
type ExtractionService interface {
	// Extract runs the named schema. Unknown names fail with
	// domain.ErrUnsupportedSchema before any retrieval.
	Extract(ctx context.Context, schema string) (*domain.ExtractionResult, error)
}
