// Package postprocessors turns extracted pages into indexable chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// ErrNilDocument is returned when Process is handed nothing to chunk.
var ErrNilDocument = errors.New("nil document")

// Pipeline runs ingestion stages in order. The first stage creates chunks
// from the pages, later ones annotate them.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline returns a pipeline over stages.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process chunks doc. Once a stage yields no chunks the remaining stages
// are skipped, so a document without text never reaches the embedder.
func (p *Pipeline) Process(ctx context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	var chunks []domain.Chunk
	for i, stage := range p.stages {
		if i > 0 && len(chunks) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s stage on %s: %w", stage.Name(), doc.Document.Filename, err)
		}
		chunks = out
	}
	return chunks, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}
