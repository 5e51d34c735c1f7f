// Package embedder attaches dense vectors to chunks.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/logger"
)

// DefaultBatchSize is how many chunks are embedded per request.
const DefaultBatchSize = 32

// DefaultTimeout bounds one embedding request.
const DefaultTimeout = 30 * time.Second

// Processor embeds chunk content in batches.
// It implements the PostProcessor interface.
type Processor struct {
	service   driven.EmbeddingService
	limiter   *rate.Limiter
	batchSize int
	timeout   time.Duration
}

// Option configures the embedder processor.
type Option func(*Processor)

// WithRateLimit caps embedding requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(p *Processor) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithBatchSize sets the number of chunks per request.
func WithBatchSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.batchSize = size
		}
	}
}

// WithTimeout sets the deadline for one request.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New creates an embedder processor. A nil service leaves chunks
// without vectors.
func New(service driven.EmbeddingService, opts ...Option) *Processor {
	p := &Processor{
		service:   service,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		batchSize: DefaultBatchSize,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "embedder"
}

// Process sets Embedding on every chunk.
func (p *Processor) Process(ctx context.Context, _ *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if p.service == nil || len(chunks) == 0 {
		return chunks, nil
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Content)
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for embedding rate limit: %w", err)
		}

		vectors, err := p.embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
		logger.Debug("Embedded chunks %d-%d of %d", start+1, end, len(chunks))
	}

	return chunks, nil
}

func (p *Processor) embed(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vectors, err := p.service.EmbedBatch(callCtx, texts)
	if err == nil {
		return vectors, nil
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("embed chunks: %w: %w", domain.ErrEmbeddingUnavailable, domain.ErrTimeout)
	}
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	return nil, fmt.Errorf("embed chunks: %w: %w", domain.ErrEmbeddingUnavailable, err)
}
