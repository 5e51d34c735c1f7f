package mcp

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer *driving.Answer
	err    error
	last   driving.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req driving.QueryRequest) (*driving.Answer, error) {
	m.last = req
	return m.answer, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	matches []domain.Match
	err     error
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.Match, error) {
	m.opts = opts
	return m.matches, m.err
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	result *domain.ExtractionResult
	err    error
}

func (m *mockExtractionService) Extract(_ context.Context, _ string) (*domain.ExtractionResult, error) {
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	deleted   []string
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Health(_ context.Context) (*driving.Health, error) {
	return &driving.Health{Status: "healthy", DocumentCount: len(m.documents)}, m.err
}

// mockCacheService is a mock implementation of driving.CacheService.
type mockCacheService struct {
	stats   domain.CacheStats
	err     error
	cleared bool
}

func (m *mockCacheService) Stats(_ context.Context) (domain.CacheStats, error) {
	return m.stats, m.err
}

func (m *mockCacheService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	report *domain.EvaluationReport
	err    error
}

func (m *mockEvaluationService) Evaluate(_ context.Context) (*domain.EvaluationReport, error) {
	return m.report, m.err
}

// mockConflictService is a mock implementation of driving.ConflictService.
type mockConflictService struct {
	report *domain.ConflictReport
	err    error
}

func (m *mockConflictService) Detect(_ context.Context) (*domain.ConflictReport, error) {
	return m.report, m.err
}

// requiredPorts returns the minimum port set accepted by NewServer.
func requiredPorts() *Ports {
	return &Ports{Query: &mockQueryService{}, Search: &mockSearchService{}}
}
