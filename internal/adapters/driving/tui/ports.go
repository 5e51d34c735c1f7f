// Package tui is the interactive terminal front end: a menu, a chat view
// with cited answers, retrieval search, a documents table with a page
// reader, and settings.
package tui

import (
	"errors"

	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

var (
	ErrInvalidPorts           = errors.New("tui: invalid ports configuration")
	ErrMissingQueryService    = errors.New("tui: query service is required")
	ErrMissingSearchService   = errors.New("tui: search service is required")
	ErrMissingDocumentService = errors.New("tui: document service is required")
)

// Ports are the services the views call. Settings may be nil, in which
// case the settings view shows an error instead of the form.
type Ports struct {
	Query    driving.QueryService
	Search   driving.SearchService
	Document driving.DocumentService
	Settings driving.SettingsService
}

// NewPorts bundles the required services.
func NewPorts(query driving.QueryService, search driving.SearchService, document driving.DocumentService) *Ports {
	return &Ports{Query: query, Search: search, Document: document}
}

// Validate reports every missing required service at once.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	var errs []error
	if p.Query == nil {
		errs = append(errs, ErrMissingQueryService)
	}
	if p.Search == nil {
		errs = append(errs, ErrMissingSearchService)
	}
	if p.Document == nil {
		errs = append(errs, ErrMissingDocumentService)
	}
	return errors.Join(errs...)
}
