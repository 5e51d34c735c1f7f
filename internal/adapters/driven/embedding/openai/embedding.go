// Package openai embeds text with the OpenAI embeddings endpoint, or any
// gateway that speaks it.
package openai

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/planroom/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// nativeDimensions are the full vector sizes. Unknown models are assumed
// to match text-embedding-3-small.
var nativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config selects the model and endpoint. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions truncates text-embedding-3 vectors server side.
	// ada-002 ignores it.
	Dimensions int
}

// EmbeddingService sends each batch as one embeddings request.
type EmbeddingService struct {
	api        *apiclient.Client
	model      string
	dimensions int
	truncate   bool
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewEmbeddingService validates cfg and fills in defaults.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrInvalidInput)
	}
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.Model = cmp.Or(cfg.Model, DefaultModel)
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &EmbeddingService{
		api:        apiclient.New("openai", cfg.BaseURL, cfg.Timeout, domain.ErrEmbeddingUnavailable),
		model:      cfg.Model,
		dimensions: nativeDimensions["text-embedding-3-small"],
	}
	if d, ok := nativeDimensions[cfg.Model]; ok {
		s.dimensions = d
	}
	if cfg.Dimensions > 0 && cfg.Model != "text-embedding-ada-002" {
		s.dimensions, s.truncate = cfg.Dimensions, true
	}
	s.api.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	return s, nil
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns vectors in input order. The API may answer out of
// order, so results are placed by their index field.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := embeddingRequest{Model: s.model, Input: texts}
	if s.truncate {
		req.Dimensions = s.dimensions
	}
	var resp embeddingResponse
	if err := s.api.Post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, s.api.Fail("embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = apiclient.Float32s(d.Embedding)
	}
	for i, v := range vecs {
		if v == nil {
			return nil, s.api.Fail("no embedding for input %d", i)
		}
	}
	return vecs, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/models")
}

func (s *EmbeddingService) Close() error { return nil }
