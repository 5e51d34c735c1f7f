// Package httpapi exposes planroom over a JSON HTTP API.
// It implements a driving adapter following hexagonal architecture principles.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("httpapi: query service is required")

// Ports aggregates the driving ports served over HTTP.
// Only Query is required; routes backed by a nil port answer 503.
type Ports struct {
	Ingest     driving.IngestService
	Query      driving.QueryService
	Search     driving.SearchService
	Extraction driving.ExtractionService
	Document   driving.DocumentService
	Cache      driving.CacheService
	Analytics  driving.AnalyticsService
	Evaluation driving.EvaluationService
	Conflicts  driving.ConflictService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
