// Package local provides an offline embedding service based on feature hashing.
//
// Each analysed term, and each pair of adjacent terms, is hashed into one of
// a fixed number of buckets with a hash-derived sign. Counts are dampened
// with log(1+tf) and the vector is L2-normalised, so cosine similarity
// reduces to a dot product. No vocabulary is kept, which means vectors from
// different runs stay comparable without any corpus preparation.
package local

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 256
	ModelName         = "hashing"
)

// EmbeddingService embeds text without a network call.
type EmbeddingService struct {
	analyzer   driven.Analyzer
	dimensions int
}

// NewEmbeddingService creates a hashing embedder over the given analyzer.
func NewEmbeddingService(analyzer driven.Analyzer, dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{analyzer: analyzer, dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
// Text with no analysable terms yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[int]float64)
	tokens := s.analyzer.Tokens(text)
	for i, tok := range tokens {
		s.add(counts, tok)
		if i > 0 {
			s.add(counts, tokens[i-1]+" "+tok)
		}
	}

	vec := make([]float32, s.dimensions)
	var norm float64
	for idx, c := range counts {
		v := math.Copysign(math.Log1p(math.Abs(c)), c)
		vec[idx] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec, nil
}

// add hashes a feature into its signed bucket.
func (s *EmbeddingService) add(counts map[int]float64, feature string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		counts[idx]--
	} else {
		counts[idx]++
	}
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
