package mcp

import (
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers grounded questions.
	Query driving.QueryService

	// Search exposes retrieval without generation.
	Search driving.SearchService

	// Extraction produces structured schedules.
	Extraction driving.ExtractionService

	// Document lists and removes ingested documents.
	Document driving.DocumentService

	// Cache reports answer cache statistics.
	Cache driving.CacheService

	// Evaluation grades answers to a fixed question set.
	Evaluation driving.EvaluationService

	// Conflicts flags inconsistencies between documents.
	Conflicts driving.ConflictService
}

// Validate ensures all required ports are set.
// The remaining ports are optional; their tools report an
// error when called without them.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
