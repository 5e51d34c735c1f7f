package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// EvaluationService scores answers to a fixed set of questions.
type EvaluationService interface {
	// Evaluate runs every case through the query pipeline and grades the
	// answers by expected keywords.
	Evaluate(ctx context.Context) (*domain.EvaluationReport, error)
}
