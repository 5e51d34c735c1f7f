package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

var errMockFailure = errors.New("mock failure")

var testUploadedAt = time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

type mockIngestService struct {
	uploads []domain.Upload
	fail    map[string]bool
}

func (m *mockIngestService) Ingest(_ context.Context, u domain.Upload) (*driving.IngestResult, error) {
	m.uploads = append(m.uploads, u)
	if m.fail[u.Filename] {
		return nil, domain.ErrUnsupportedFormat
	}
	return &driving.IngestResult{Filename: u.Filename, DocumentID: domain.DocumentID(u.Filename), ChunkCount: 2}, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, uploads []domain.Upload) []driving.IngestResult {
	out := make([]driving.IngestResult, len(uploads))
	for i, u := range uploads {
		res, err := m.Ingest(ctx, u)
		if err != nil {
			out[i] = driving.IngestResult{Filename: u.Filename, Err: err}
			continue
		}
		out[i] = *res
	}
	return out
}

func (m *mockIngestService) SupportedExtensions() []string {
	return []string{".txt", ".pdf"}
}

type mockQueryService struct {
	last driving.QueryRequest
	err  error
}

func (m *mockQueryService) Query(_ context.Context, req driving.QueryRequest) (*driving.Answer, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &driving.Answer{
		Answer:         "The slab is 200mm thick.",
		Sources:        []domain.Source{{Filename: "S-201.pdf", Page: 3}},
		Confidence:     domain.ConfidenceHigh,
		ConversationID: "conv-123",
		Cached:         req.ConversationID == "",
	}, nil
}

type mockSearchService struct {
	last domain.SearchOptions
	err  error
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.Match, error) {
	m.last = opts
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Match{{
		Chunk: domain.Chunk{
			ID: "c1", DocumentID: "doc-1", Filename: "S-201.pdf", PageNumber: 3,
			Content: "Slab thickness 200mm\nreinforcement N12 @ 200",
		},
		LexicalScore: 0.8,
		VectorScore:  0.6,
		FusedScore:   0.7,
	}}, nil
}

type mockExtractionService struct{}

func (mockExtractionService) Extract(_ context.Context, schema string) (*domain.ExtractionResult, error) {
	s, err := domain.ParseSchema(schema)
	if err != nil {
		return nil, err
	}
	return &domain.ExtractionResult{Schema: s, Data: domain.EmptyRecords(s)}, nil
}

type mockDocumentService struct {
	docs    []domain.Document
	deleted []string
	opened  string
	err     error
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetContent(_ context.Context, id string) (string, error) {
	if _, err := m.Get(context.Background(), id); err != nil {
		return "", err
	}
	return "GENERAL NOTES" + domain.PageBreak + "FOOTING SCHEDULE", nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if _, err := m.Get(context.Background(), id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Open(_ context.Context, id string) error {
	if _, err := m.Get(context.Background(), id); err != nil {
		return err
	}
	m.opened = id
	return nil
}

func (m *mockDocumentService) Health(context.Context) (*driving.Health, error) {
	return &driving.Health{Status: "ok", DocumentCount: len(m.docs)}, nil
}

type mockCacheService struct {
	cleared bool
}

func (m *mockCacheService) Stats(context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{EntryCount: 5, ValidCount: 4, TTLSeconds: 3600}, nil
}

func (m *mockCacheService) Clear(context.Context) error {
	m.cleared = true
	return nil
}

type mockAnalyticsService struct{}

func (mockAnalyticsService) Summary(context.Context) (*domain.Analytics, error) {
	return &domain.Analytics{
		TotalQueries:  3,
		Popular:       []domain.QueryCount{{Query: "slab thickness", Count: 2}},
		DocumentUsage: map[string]int{"S-201.pdf": 2, "A-101.pdf": 1},
	}, nil
}

type mockEvaluationService struct{}

func (mockEvaluationService) Evaluate(context.Context) (*domain.EvaluationReport, error) {
	return &domain.EvaluationReport{
		TotalQueries:  2,
		IndexedChunks: 40,
		Results: []domain.EvaluationResult{
			{Query: "Door widths?", Category: "dimensions", KeywordScore: 0.5, SourcesCount: 2,
				Correctness: domain.CorrectnessCorrect, HasSources: true},
			{Query: "Lobby floor?", Category: "materials", KeywordScore: 0.25,
				Correctness: domain.CorrectnessPartial},
		},
		Summary: domain.EvaluationSummary{Correct: 1, PartiallyCorrect: 1, WithSources: 1},
	}, nil
}

type mockConflictService struct{}

func (mockConflictService) Detect(context.Context) (*domain.ConflictReport, error) {
	return &domain.ConflictReport{
		TopicsChecked:  5,
		ConflictsFound: 1,
		Conflicts: []domain.Conflict{{
			Topic:      "door fire ratings",
			Finding:    "A-601 lists D-101 as 1 HR but the specification requires 90 minutes.",
			Sources:    []domain.Source{{Filename: "A-601.pdf", Page: 3}},
			Confidence: domain.ConfidenceMedium,
		}},
		Analysis: "Analyzed common specification areas for inconsistencies",
	}, nil
}

type mockSettingsService struct {
	settings domain.AppSettings
	lexical  float64
	vector   float64
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.settings.Embedding.Provider = p
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = key
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, key string) error {
	m.settings.LLM.Provider = p
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = key
	return nil
}

func (m *mockSettingsService) SetWeights(lexical, vector float64) error {
	if lexical < 0 || vector < 0 || lexical+vector == 0 {
		return domain.ErrInvalidInput
	}
	m.lexical, m.vector = lexical, vector
	return nil
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	query     *mockQueryService
	search    *mockSearchService
	documents *mockDocumentService
	cache     *mockCacheService
	settings  *mockSettingsService
}

var mocks *testServices

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() func() {
	mocks = &testServices{
		ingest: &mockIngestService{fail: map[string]bool{}},
		query:  &mockQueryService{},
		search: &mockSearchService{},
		documents: &mockDocumentService{docs: []domain.Document{{
			ID: "doc-1", Filename: "S-201.pdf", ChunkCount: 14,
			StoragePath: "/tmp/uploads/S-201.pdf", UploadedAt: testUploadedAt,
		}}},
		cache:    &mockCacheService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	SetServices(&Services{
		Ingest:     mocks.ingest,
		Query:      mocks.query,
		Search:     mocks.search,
		Extraction: mockExtractionService{},
		Document:   mocks.documents,
		Cache:      mocks.cache,
		Analytics:  mockAnalyticsService{},
		Evaluation: mockEvaluationService{},
		Conflicts:  mockConflictService{},
		Settings:   mocks.settings,
	})

	return func() {
		SetServices(nil)
		mocks = nil
	}
}
