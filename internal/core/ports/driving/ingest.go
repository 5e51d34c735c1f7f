package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// IngestResult reports the outcome of ingesting one upload.
type IngestResult struct {
	// Filename is the upload name.
	Filename string `json:"filename"`

	// DocumentID is the stable document fingerprint.
	DocumentID string `json:"document_id"`

	// ChunkCount is the number of chunks indexed.
	ChunkCount int `json:"chunks"`

	// Err is set when the upload was skipped.
	Err error `json:"-"`
}

// IngestService turns uploads into indexed chunks.
type IngestService interface {
	// Ingest extracts, chunks, embeds and indexes one upload.
	Ingest(ctx context.Context, upload domain.Upload) (*IngestResult, error)

	// IngestBatch ingests uploads in order. A failing upload is reported
	// in its result and the batch continues.
	IngestBatch(ctx context.Context, uploads []domain.Upload) []IngestResult
}
