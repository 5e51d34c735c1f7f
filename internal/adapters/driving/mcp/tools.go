package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

const defaultSearchTopK = 10

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the ingested documents"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"continue an earlier conversation"`
	DocumentID     string `json:"document_id,omitempty" jsonschema:"restrict retrieval to one document"`
	PageFrom       int    `json:"page_from,omitempty" jsonschema:"first page to consider"`
	PageTo         int    `json:"page_to,omitempty" jsonschema:"last page to consider"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer         string          `json:"answer"`
	Sources        []domain.Source `json:"sources"`
	Confidence     string          `json:"confidence"`
	ConversationID string          `json:"conversation_id"`
	Cached         bool            `json:"cached"`
	StructuredData any             `json:"structured_data,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the text to search for"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 10)"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the search to one document"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents one ranked chunk.
type SearchResultOutput struct {
	DocumentID   string  `json:"document_id"`
	Filename     string  `json:"filename"`
	Page         int     `json:"page"`
	ChunkIndex   int     `json:"chunk_index"`
	LexicalScore float64 `json:"lexical_score"`
	VectorScore  float64 `json:"vector_score"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

// ExtractInput is the input schema for the extract_structured tool.
type ExtractInput struct {
	Schema string `json:"schema" jsonschema:"one of door_schedule, room_summary, equipment_list"`
}

// ExtractOutput is the output schema for the extract_structured tool.
type ExtractOutput struct {
	Schema  string          `json:"schema"`
	Count   int             `json:"count"`
	Data    any             `json:"data"`
	Sources []domain.Source `json:"sources"`
}

// ListDocumentsInput takes no arguments.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one ingested document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt string `json:"uploaded_at"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to remove with all its chunks"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Deleted    bool   `json:"deleted"`
}

// CacheStatsInput takes no arguments.
type CacheStatsInput struct{}

// EvaluateInput takes no arguments.
type EvaluateInput struct{}

// DetectConflictsInput takes no arguments.
type DetectConflictsInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question from the ingested construction documents, citing file and page",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Rank document chunks by hybrid lexical and vector relevance without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_structured",
		Description: "Extract a door schedule, room summary or equipment list as JSON records",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document and its chunks from the index",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Report answer cache size and freshness",
	}, s.handleCacheStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate",
		Description: "Grade answers to a fixed set of construction questions by expected keywords and citations",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_conflicts",
		Description: "Flag potential inconsistencies between documents on fire ratings, finishes, accessibility and dimensions",
	}, s.handleDetectConflicts)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	answer, err := s.ports.Query.Query(ctx, driving.QueryRequest{
		Text:           input.Question,
		ConversationID: input.ConversationID,
		Filters: domain.Filters{
			DocumentID: input.DocumentID,
			PageFrom:   input.PageFrom,
			PageTo:     input.PageTo,
		},
	})
	if err != nil {
		return nil, QueryOutput{}, err
	}

	return nil, QueryOutput{
		Answer:         answer.Answer,
		Sources:        answer.Sources,
		Confidence:     string(answer.Confidence),
		ConversationID: answer.ConversationID,
		Cached:         answer.Cached,
		StructuredData: answer.StructuredData,
	}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	opts := domain.SearchOptions{TopK: topK, Filters: domain.Filters{DocumentID: input.DocumentID}}
	matches, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(matches)),
		Count:   len(matches),
	}
	for i := range matches {
		c := &matches[i].Chunk
		output.Results[i] = SearchResultOutput{
			DocumentID:   c.DocumentID,
			Filename:     c.Filename,
			Page:         c.PageNumber,
			ChunkIndex:   c.ChunkIndex,
			LexicalScore: matches[i].LexicalScore,
			VectorScore:  matches[i].VectorScore,
			Score:        matches[i].FusedScore,
			Content:      c.Content,
		}
	}

	return nil, output, nil
}

func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if s.ports.Extraction == nil {
		return nil, ExtractOutput{}, notConfigured("extraction")
	}

	result, err := s.ports.Extraction.Extract(ctx, input.Schema)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	return nil, ExtractOutput{
		Schema:  result.Schema.String(),
		Count:   result.Count,
		Data:    result.Data,
		Sources: result.Sources,
	}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, notConfigured("document")
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			ChunkCount: docs[i].ChunkCount,
			UploadedAt: docs[i].UploadedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, DeleteDocumentOutput{}, notConfigured("document")
	}
	if err := s.ports.Document.Delete(ctx, input.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{DocumentID: input.DocumentID, Deleted: true}, nil
}

func (s *Server) handleCacheStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CacheStatsInput,
) (*mcp.CallToolResult, domain.CacheStats, error) {
	if s.ports.Cache == nil {
		return nil, domain.CacheStats{}, notConfigured("cache")
	}
	stats, err := s.ports.Cache.Stats(ctx)
	if err != nil {
		return nil, domain.CacheStats{}, err
	}
	return nil, stats, nil
}

func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EvaluateInput,
) (*mcp.CallToolResult, domain.EvaluationReport, error) {
	if s.ports.Evaluation == nil {
		return nil, domain.EvaluationReport{}, notConfigured("evaluation")
	}
	report, err := s.ports.Evaluation.Evaluate(ctx)
	if err != nil {
		return nil, domain.EvaluationReport{}, err
	}
	return nil, *report, nil
}

func (s *Server) handleDetectConflicts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ DetectConflictsInput,
) (*mcp.CallToolResult, domain.ConflictReport, error) {
	if s.ports.Conflicts == nil {
		return nil, domain.ConflictReport{}, notConfigured("conflict")
	}
	report, err := s.ports.Conflicts.Detect(ctx)
	if err != nil {
		return nil, domain.ConflictReport{}, err
	}
	return nil, *report, nil
}

func notConfigured(name string) error {
	return fmt.Errorf("mcp: %s service not configured", name)
}
