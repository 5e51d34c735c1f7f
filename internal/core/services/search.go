package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService exposes the retriever without generation. Matches carry
// their per-signal scores so ranking can be inspected.
type SearchService struct {
	retriever *Retriever
}

// NewSearchService creates a new search service.
func NewSearchService(retriever *Retriever) *SearchService {
	return &SearchService{retriever: retriever}
}

// Search returns ranked matches for query.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Match, error) {
	logger.Section("Search")
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.Match{}, nil
	}

	mode := "hybrid"
	if s.retriever.LexicalOnly() {
		mode = "lexical"
	}
	logger.Info("Search %q (%s, top %d)", query, mode, opts.TopK)

	matches, err := s.retriever.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Info("Final results: %d", len(matches))
	return matches, nil
}
