package search

import "errors"

var (
	// ErrNoSearchService is returned when the view has no search service.
	ErrNoSearchService = errors.New("search service is required")

	// ErrInvalidPage is returned for a malformed page or pages token.
	ErrInvalidPage = errors.New("invalid page")
)
