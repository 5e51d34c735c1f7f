package driven

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// PostProcessor is one ingest stage after extraction. The first stage
// gets nil chunks and creates them; later stages enrich what they receive
// (terms, embeddings) and pass it on.
type PostProcessor interface {
	// Name is the key used in pipeline configuration and error messages.
	Name() string
	Process(ctx context.Context, doc *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs the configured stages in order.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error)
}
