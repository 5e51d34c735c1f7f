package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors. A later registration for
// the same extension replaces the earlier one.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor for each extension it supports.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.SupportedExtensions() {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// Extract dispatches on the filename extension.
func (r *Registry) Extract(ctx context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))

	r.mu.RLock()
	extractor, ok := r.extractors[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", upload.Filename, domain.ErrUnsupportedFormat)
	}
	return extractor.Extract(ctx, upload)
}

// Supports returns true if filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
