package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

const (
	uriScheme    = "planroom://"
	documentsURI = uriScheme + "documents"
	healthURI    = uriScheme + "health"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Every indexed drawing set and specification, with chunk counts",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         healthURI,
		Name:        "health",
		Description: "Corpus size and answer cache occupancy",
		MIMEType:    "application/json",
	}, s.handleHealthResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of one document. Pages are separated by form feeds.",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}/pages/{page}",
		Name:        "document-page",
		Description: "Extracted text of a single page, for checking a citation",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

type documentInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	infos := []documentInfo{}
	if s.ports.Document != nil {
		docs, err := s.ports.Document.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for _, d := range docs {
			infos = append(infos, documentInfo{ID: d.ID, Filename: d.Filename, ChunkCount: d.ChunkCount, UploadedAt: d.UploadedAt})
		}
	}
	if len(infos) == 0 {
		return textResult(req, "application/json", "[]"), nil
	}
	return jsonResult(req, infos)
}

func (s *Server) handleHealthResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	health, err := s.ports.Document.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading health: %w", err)
	}
	return jsonResult(req, health)
}

// handleDocumentContentResource serves both the whole-document and the
// single-page templates.
func (s *Server) handleDocumentContentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	docID, page, ok := parseDocumentURI(uri)
	if !ok || s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	content, err := s.ports.Document.GetContent(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}
	if page == 0 {
		return textResult(req, "text/plain", content), nil
	}

	pages := domain.SplitPages(content)
	if page > len(pages) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return textResult(req, "text/plain", pages[page-1].Text), nil
}

// parseDocumentURI accepts planroom://documents/{id} and
// planroom://documents/{id}/pages/{n}. Page is zero for the former.
func parseDocumentURI(uri string) (id string, page int, ok bool) {
	rest, found := strings.CutPrefix(uri, documentsURI+"/")
	if !found {
		return "", 0, false
	}
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], 0, true
	case len(parts) == 3 && parts[0] != "" && parts[1] == "pages":
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return "", 0, false
		}
		return parts[0], n, true
	default:
		return "", 0, false
	}
}

func textResult(req *mcp.ReadResourceRequest, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: req.Params.URI, MIMEType: mimeType, Text: text}},
	}
}

func jsonResult(req *mcp.ReadResourceRequest, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", req.Params.URI, err)
	}
	return textResult(req, "application/json", string(data)), nil
}
