package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/logger"
)

// DefaultTopK is the number of matches returned when none is requested.
const DefaultTopK = 5

// Retriever ranks chunks by a weighted fusion of lexical overlap and
// vector similarity. Each signal is normalised by its maximum over the
// candidate set before fusion.
type Retriever struct {
	index        driven.IndexStore
	analyzer     driven.Analyzer
	embedding    driven.EmbeddingService
	lexical      float64
	vector       float64
	topK         int
	embedTimeout time.Duration
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithWeights sets the fusion weights. A zero vector weight disables
// query embedding.
func WithWeights(lexical, vector float64) RetrieverOption {
	return func(r *Retriever) {
		if lexical >= 0 && vector >= 0 {
			r.lexical = lexical
			r.vector = vector
		}
	}
}

// WithTopK sets the default result count.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithEmbedTimeout bounds the query embedding call.
func WithEmbedTimeout(d time.Duration) RetrieverOption {
	return func(r *Retriever) {
		if d > 0 {
			r.embedTimeout = d
		}
	}
}

// NewRetriever creates a retriever over index. A nil embedding service
// forces lexical-only ranking.
func NewRetriever(
	index driven.IndexStore,
	analyzer driven.Analyzer,
	embedding driven.EmbeddingService,
	opts ...RetrieverOption,
) *Retriever {
	r := &Retriever{
		index:        index,
		analyzer:     analyzer,
		embedding:    embedding,
		lexical:      0.5,
		vector:       0.5,
		topK:         DefaultTopK,
		embedTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.embedding == nil {
		r.vector = 0
	}
	return r
}

// LexicalOnly reports whether vector scoring is disabled.
func (r *Retriever) LexicalOnly() bool {
	return r.vector == 0
}

// Retrieve returns up to opts.TopK matches for query, best first.
// An empty corpus or a query matching nothing yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error) {
	return r.rank(ctx, query, opts, false)
}

// Nearest ranks like Retrieve but keeps chunks that score zero on both
// signals, so it returns up to opts.TopK chunks whenever the filtered
// corpus is non-empty. Unscored chunks follow scored ones in index order.
func (r *Retriever) Nearest(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error) {
	return r.rank(ctx, query, opts, true)
}

func (r *Retriever) rank(ctx context.Context, query string, opts domain.SearchOptions, keepUnscored bool) ([]domain.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Match{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = r.topK
	}

	chunks, err := r.index.Select(ctx, opts.Filters.Allows)
	if err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}
	logger.Debug("Retrieve %q: %d chunks pass filters", query, len(chunks))
	if len(chunks) == 0 {
		return []domain.Match{}, nil
	}

	queryTerms := r.analyzer.Terms(query)

	var queryVec []float32
	if !r.LexicalOnly() {
		queryVec, err = r.embedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
	}

	matches := make([]domain.Match, 0, len(chunks))
	var maxLex, maxVec float64
	for i := range chunks {
		lex := lexicalScore(queryTerms, chunks[i].Terms)
		var vec float64
		if queryVec != nil {
			vec = math.Max(0, cosine(queryVec, chunks[i].Embedding))
		}
		if lex == 0 && vec == 0 && !keepUnscored {
			continue
		}
		maxLex = math.Max(maxLex, lex)
		maxVec = math.Max(maxVec, vec)
		matches = append(matches, domain.Match{
			Chunk:        chunks[i],
			LexicalScore: lex,
			VectorScore:  vec,
		})
	}
	logger.Debug("Candidates: %d", len(matches))

	for i := range matches {
		m := &matches[i]
		if maxLex > 0 {
			m.LexicalScore /= maxLex
		}
		if maxVec > 0 {
			m.VectorScore /= maxVec
		}
		m.FusedScore = r.lexical*m.LexicalScore + r.vector*m.VectorScore
	}

	// Stable sort keeps insertion order as the final tie-break.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].FusedScore != matches[j].FusedScore {
			return matches[i].FusedScore > matches[j].FusedScore
		}
		return matches[i].Chunk.ChunkIndex < matches[j].Chunk.ChunkIndex
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	defer cancel()

	vec, err := r.embedding.Embed(callCtx, query)
	if err == nil {
		return vec, nil
	}
	logger.Warn("Query embedding failed: %v", err)
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingUnavailable, domain.ErrTimeout)
	}
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingUnavailable, err)
}

// lexicalScore sums the chunk frequency of each distinct query term.
func lexicalScore(queryTerms, chunkTerms map[string]int) float64 {
	var score int
	for term := range queryTerms {
		score += chunkTerms[term]
	}
	return float64(score)
}

// cosine returns the cosine similarity of a and b, or 0 when the vectors
// differ in length or either has zero magnitude.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MaxScore is the highest fused score the current weights can produce.
func (r *Retriever) MaxScore() float64 {
	return r.lexical + r.vector
}
