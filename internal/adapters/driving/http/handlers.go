package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

const defaultSearchTopK = 10

type chatRequest struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Filters        domain.Filters `json:"filters"`
}

type searchRequest struct {
	Query   string         `json:"query"`
	TopK    int            `json:"top_k,omitempty"`
	Filters domain.Filters `json:"filters"`
}

type searchResult struct {
	DocumentID   string  `json:"document_id"`
	Filename     string  `json:"filename"`
	Page         int     `json:"page"`
	ChunkIndex   int     `json:"chunk_index"`
	LexicalScore float64 `json:"lexical_score"`
	VectorScore  float64 `json:"vector_score"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

type extractRequest struct {
	ExtractionType string `json:"extraction_type"`
}

type documentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt string `json:"uploaded_at"`
}

type uploadResult struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id,omitempty"`
	Chunks     int    `json:"chunks_created"`
	Error      string `json:"error,omitempty"`
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		ChunkCount: d.ChunkCount,
		UploadedAt: d.UploadedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "planroom",
		"version": s.version,
		"status":  "operational",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeJSON(w, http.StatusOK, driving.Health{Status: "ok"})
		return
	}
	health, err := s.ports.Document.Health(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingest == nil {
		writeError(w, notConfigured("ingest"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: reading upload: %v", domain.ErrInvalidInput, err))
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, fmt.Errorf("%w: no file field in upload", domain.ErrInvalidInput))
		return
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, fmt.Errorf("opening %s: %w", h.Filename, err))
			return
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, fmt.Errorf("reading %s: %w", h.Filename, err))
			return
		}
		uploads = append(uploads, domain.Upload{Filename: h.Filename, Content: content})
	}

	if len(uploads) == 1 {
		res, err := s.ports.Ingest.Ingest(r.Context(), uploads[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, uploadResult{
			Filename:   res.Filename,
			DocumentID: res.DocumentID,
			Chunks:     res.ChunkCount,
		})
		return
	}

	results := s.ports.Ingest.IngestBatch(r.Context(), uploads)
	out := make([]uploadResult, len(results))
	for i, res := range results {
		out[i] = uploadResult{Filename: res.Filename, DocumentID: res.DocumentID, Chunks: res.ChunkCount}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusMultiStatus, map[string]any{"results": out})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeError(w, notConfigured("document"))
		return
	}
	docs, err := s.ports.Document.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]documentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out, "count": len(out)})
}

func (s *Server) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeError(w, notConfigured("document"))
		return
	}
	id := chi.URLParam(r, "id")
	content, err := s.ports.Document.GetContent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	pages := strings.Split(content, domain.PageBreak)
	writeJSON(w, http.StatusOK, map[string]any{"document_id": id, "pages": pages})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeError(w, notConfigured("document"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.ports.Document.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": id, "deleted": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, fmt.Errorf("%w: message is required", domain.ErrInvalidInput))
		return
	}

	answer, err := s.ports.Query.Query(r.Context(), driving.QueryRequest{
		Text:           req.Message,
		Filters:        req.Filters,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.ports.Search == nil {
		writeError(w, notConfigured("search"))
		return
	}
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultSearchTopK
	}

	matches, err := s.ports.Search.Search(r.Context(), req.Query, domain.SearchOptions{
		TopK:    req.TopK,
		Filters: req.Filters,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]searchResult, len(matches))
	for i := range matches {
		c := &matches[i].Chunk
		out[i] = searchResult{
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
	writeJSON(w, http.StatusOK, map[string]any{"results": out, "count": len(out)})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.ports.Extraction == nil {
		writeError(w, notConfigured("extraction"))
		return
	}
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.ports.Extraction.Extract(r.Context(), req.ExtractionType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.ports.Analytics == nil {
		writeError(w, notConfigured("analytics"))
		return
	}
	summary, err := s.ports.Analytics.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if s.ports.Evaluation == nil {
		writeError(w, notConfigured("evaluation"))
		return
	}
	report, err := s.ports.Evaluation.Evaluate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDetectConflicts(w http.ResponseWriter, r *http.Request) {
	if s.ports.Conflicts == nil {
		writeError(w, notConfigured("conflict detection"))
		return
	}
	report, err := s.ports.Conflicts.Detect(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.ports.Cache == nil {
		writeError(w, notConfigured("cache"))
		return
	}
	stats, err := s.ports.Cache.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.ports.Cache == nil {
		writeError(w, notConfigured("cache"))
		return
	}
	if err := s.ports.Cache.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
