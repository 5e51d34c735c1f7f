package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/analysis"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// mockEmbedding returns fixed vectors keyed by text.
type mockEmbedding struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	block   bool
	calls   int
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m *mockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int            { return 3 }
func (m *mockEmbedding) ModelName() string          { return "mock-embed" }
func (m *mockEmbedding) Ping(context.Context) error { return nil }
func (m *mockEmbedding) Close() error               { return nil }

func (m *mockEmbedding) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLM records chat calls and returns a canned reply.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	block    bool
	messages [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	return m.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{})
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *mockLLM) lastMessages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// mockPrompts serves templates from a map.
type mockPrompts struct {
	templates map[string]string
}

func newMockPrompts() *mockPrompts {
	return &mockPrompts{templates: map[string]string{
		driven.PromptAnswerSystem:     "You answer questions about construction documents.",
		driven.PromptAnswerUser:       "Context:\n%s\n\nQuestion: %s",
		driven.PromptExtractionSystem: "Return JSON only.",
		driven.PromptExtractDoors:     "Extract doors from:\n%s",
		driven.PromptExtractRooms:     "Extract rooms from:\n%s",
		driven.PromptExtractEquipment: "Extract equipment from:\n%s",
		driven.PromptConflictReview:   "Conflicts about %s in:\n%s",
	}}
}

func (p *mockPrompts) Load(name string) (string, error) {
	t, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %s", domain.ErrNotFound, name)
	}
	return t, nil
}

func (p *mockPrompts) Reload() {}

// failingCache fails every call.
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string) (*domain.CacheEntry, bool, error) {
	return nil, false, errCacheDown
}
func (failingCache) Put(context.Context, *domain.CacheEntry) error { return errCacheDown }
func (failingCache) Clear(context.Context) error                   { return errCacheDown }
func (failingCache) Stats(context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{}, errCacheDown
}
func (failingCache) TTL() time.Duration { return time.Hour }

// stubExtractors splits upload content into pages, or fails for
// filenames listed in errs.
type stubExtractors struct {
	errs map[string]error
}

func (s *stubExtractors) Extract(_ context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if err := s.errs[upload.Filename]; err != nil {
		return nil, err
	}
	return domain.SplitPages(string(upload.Content)), nil
}

func (s *stubExtractors) Register(driven.Extractor) {}

func (s *stubExtractors) SupportedExtensions() []string { return []string{".txt"} }

// pagePipeline emits one chunk per page with analysed terms.
type pagePipeline struct{}

func (pagePipeline) Process(_ context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error) {
	a := analysis.New()
	chunks := make([]domain.Chunk, 0, len(doc.Pages))
	for i, p := range doc.Pages {
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.Document.ID, p.Number, 0),
			DocumentID: doc.Document.ID,
			Filename:   doc.Document.Filename,
			PageNumber: p.Number,
			ChunkIndex: i,
			Content:    p.Text,
			Terms:      a.Terms(p.Text),
		})
	}
	return chunks, nil
}

// memoryUploads keeps uploads in a map keyed by a fake path.
type memoryUploads struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newMemoryUploads() *memoryUploads {
	return &memoryUploads{files: make(map[string][]byte)}
}

func (u *memoryUploads) Save(_ context.Context, upload *domain.Upload) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	path := filepath.Join("/uploads", upload.Filename)
	u.files[path] = upload.Content
	return path, nil
}

func (u *memoryUploads) Delete(_ context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, path)
	delete(u.files, path)
	return nil
}

// chunk builds an indexed chunk with analysed terms.
func chunk(docID, filename string, page, index int, content string) domain.Chunk {
	return domain.Chunk{
		ID:         domain.ChunkID(docID, page, index),
		DocumentID: docID,
		Filename:   filename,
		PageNumber: page,
		ChunkIndex: index,
		Content:    content,
		Terms:      analysis.New().Terms(content),
	}
}

// newIndex returns an index store holding chunks.
func newIndex(chunks ...domain.Chunk) *memory.IndexStore {
	index := memory.NewIndexStore()
	for i := range chunks {
		if err := index.Add(context.Background(), &chunks[i]); err != nil {
			panic(err)
		}
	}
	return index
}
