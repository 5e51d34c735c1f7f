// Package driven declares what the core needs from infrastructure.
package driven

import "context"

// EmbeddingService turns chunk and question text into vectors for the
// semantic half of hybrid search. Every vector from one service has
// Dimensions() entries, and the vector index is rebuilt when that changes.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in order. Remote providers send one request.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int

	// ModelName is stored with each vector so stale ones can be detected.
	ModelName() string

	Ping(ctx context.Context) error
	Close() error
}
