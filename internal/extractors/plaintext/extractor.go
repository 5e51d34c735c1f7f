// Package plaintext extracts text files. Form feed characters split pages.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".csv", ".tsv", ".log"}
}

// Extract returns the pages of a UTF-8 text file.
func (e *Extractor) Extract(_ context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(upload.Content) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text: %w", upload.Filename, domain.ErrExtraction)
	}
	return domain.SplitPages(string(upload.Content)), nil
}
