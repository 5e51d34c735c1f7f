// Package terms fills the lexical posting table of each chunk.
package terms

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Processor analyses chunk content into term frequencies.
// It implements the PostProcessor interface.
type Processor struct {
	analyzer driven.Analyzer
}

// New creates a terms processor backed by the given analyzer.
func New(analyzer driven.Analyzer) *Processor {
	return &Processor{analyzer: analyzer}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "terms"
}

// Process sets Terms on every chunk.
func (p *Processor) Process(_ context.Context, _ *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].Terms = p.analyzer.Terms(chunks[i].Content)
	}
	return chunks, nil
}
