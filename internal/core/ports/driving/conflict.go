package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// ConflictService looks for contradictory requirements across documents.
type ConflictService interface {
	// Detect checks each known topic and returns the flagged conflicts.
	Detect(ctx context.Context) (*domain.ConflictReport, error)
}
