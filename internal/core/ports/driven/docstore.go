package driven

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// DocumentStore holds document metadata and chunks. Chunks carry
// their embeddings so the index can be rebuilt without re-embedding.
type DocumentStore interface {
	// SaveDocument inserts or replaces by ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error
	// SaveChunks replaces every chunk of the owning document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error
	// GetDocument returns domain.ErrNotFound for unknown IDs.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
	// AllChunks returns every chunk in ingest order for index replay on start.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)
	// DeleteDocument drops the document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
	// ListDocuments orders newest upload first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// UploadStore keeps the raw bytes of uploaded files.
type UploadStore interface {
	// Save writes the upload and returns where it was stored.
	Save(ctx context.Context, upload *domain.Upload) (string, error)

	// Delete removes a stored upload. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}
