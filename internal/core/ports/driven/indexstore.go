package driven

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// IndexStore holds the searchable corpus: chunk postings and vectors.
// Enumeration is in insertion order. Implementations must be safe for
// concurrent use.
type IndexStore interface {
	// Add stores a chunk. Re-adding an existing ID overwrites it in place
	// and keeps its original insertion position.
	Add(ctx context.Context, chunk *domain.Chunk) error

	// All returns a snapshot of every chunk.
	All(ctx context.Context) ([]domain.Chunk, error)

	// Select returns a snapshot of the chunks accepted by keep.
	Select(ctx context.Context, keep func(*domain.Chunk) bool) ([]domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// DeleteDocument removes every chunk of a document.
	DeleteDocument(ctx context.Context, documentID string) error
}
