package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the concatenated content of all chunks.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Delete removes a document, its chunks and its upload.
	Delete(ctx context.Context, documentID string) error

	// Open opens the stored upload in the system default application.
	Open(ctx context.Context, documentID string) error

	// Health reports corpus size.
	Health(ctx context.Context) (*Health, error)
}

// Health summarises the state of the corpus.
type Health struct {
	Status        string `json:"status"`
	DocumentCount int    `json:"documents"`
	ChunkCount    int    `json:"chunks"`
	CacheEntries  int    `json:"cache_entries"`
}
