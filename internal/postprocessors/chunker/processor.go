// Package chunker cuts page text into overlapping character windows.
package chunker

import (
	"context"
	"iter"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Processor is the first ingest stage. Windows never cross a page
// boundary so every chunk cites exactly one page.
type Processor struct {
	size    int
	overlap int
}

// Option configures a Processor.
type Option func(*Processor)

// WithChunkSize sets the window length in runes. Non-positive values are ignored.
func WithChunkSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithOverlap sets how many runes consecutive windows share. Negative values are ignored.
func WithOverlap(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlap = n
		}
	}
}

// New applies opts over the defaults. An overlap that would stall the
// window (overlap >= size) is cut to a quarter of the size.
func New(opts ...Option) *Processor {
	p := &Processor{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, o := range opts {
		o(p)
	}
	if p.overlap >= p.size {
		p.overlap = p.size / 4
	}
	return p
}

// Name identifies the stage in pipeline errors.
func (p *Processor) Name() string { return "chunker" }

// Windows yields trimmed windows of text, stepping size-overlap runes at a
// time and stopping at the first window that reaches the end. Blank
// windows are dropped.
func (p *Processor) Windows(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		r := []rune(text)
		for lo := 0; ; lo += p.size - p.overlap {
			hi := min(lo+p.size, len(r))
			w := strings.TrimSpace(string(r[lo:hi]))
			if w != "" && !yield(w) {
				return
			}
			if hi == len(r) {
				return
			}
		}
	}
}

// Process ignores incoming chunks and builds new ones page by page.
// IDs come from document, page and index, so re-ingesting an unchanged
// file yields the same chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.ExtractedDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	var out []domain.Chunk
	d := doc.Document
	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i := 0
		for w := range p.Windows(page.Text) {
			out = append(out, domain.Chunk{
				ID:         domain.ChunkID(d.ID, page.Number, i),
				DocumentID: d.ID,
				Filename:   d.Filename,
				PageNumber: page.Number,
				ChunkIndex: i,
				Content:    w,
			})
			i++
		}
	}
	return out, nil
}
