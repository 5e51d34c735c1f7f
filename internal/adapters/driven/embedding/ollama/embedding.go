// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"time"

	"github.com/custodia-labs/planroom/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Config selects the model and server. Dimensions must match the model,
// since Ollama does not report it up front.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// EmbeddingService calls /api/embed, which takes a whole batch.
type EmbeddingService struct {
	api        *apiclient.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService fills in defaults. No connection is made.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &EmbeddingService{
		api:        apiclient.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), cfg.Timeout, domain.ErrEmbeddingUnavailable),
		model:      cmp.Or(cfg.Model, DefaultModel),
		dimensions: cmp.Or(cfg.Dimensions, DefaultDimensions),
	}
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one call and checks one vector came back per input.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	if err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, s.api.Fail("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, raw := range resp.Embeddings {
		vecs[i] = apiclient.Float32s(raw)
	}
	return vecs, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists local models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/api/tags")
}

func (s *EmbeddingService) Close() error { return nil }
