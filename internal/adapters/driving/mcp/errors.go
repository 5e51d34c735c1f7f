// Package mcp provides an MCP (Model Context Protocol) server adapter for planroom.
// It lets AI assistants ask grounded questions about ingested construction
// documents and pull structured schedules out of them.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
