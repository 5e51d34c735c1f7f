package driven

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// Extractor converts an uploaded file into pages of text.
// Each extractor handles specific file extensions (e.g., ".pdf", ".txt").
type Extractor interface {
	// SupportedExtensions returns lower-case extensions including the dot.
	SupportedExtensions() []string

	// Extract returns the pages of the upload in order.
	// A corrupt file fails with an error wrapping domain.ErrExtraction.
	Extract(ctx context.Context, upload *domain.Upload) ([]domain.Page, error)
}

// ExtractorRegistry selects the extractor for an upload.
type ExtractorRegistry interface {
	// Extract dispatches on the filename extension.
	// Returns domain.ErrUnsupportedFormat if no extractor matches.
	Extract(ctx context.Context, upload *domain.Upload) ([]domain.Page, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedExtensions returns all extensions that can be extracted.
	SupportedExtensions() []string
}
