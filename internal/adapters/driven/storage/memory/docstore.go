package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// entry is one upload. seq records when the id was first seen so chunk
// replay keeps ingest order after deletes.
type entry struct {
	seq    uint64
	doc    *domain.Document
	chunks []domain.Chunk
}

// DocumentStore keeps documents and chunks in a map. It backs --ephemeral
// runs and tests.
type DocumentStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	next    uint64
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{entries: map[string]*entry{}}
}

// entryFor returns the entry for id, creating it. Callers hold mu.
func (s *DocumentStore) entryFor(id string) *entry {
	e, ok := s.entries[id]
	if !ok {
		s.next++
		e = &entry{seq: s.next}
		s.entries[id] = e
	}
	return e
}

// sorted returns entries in first-seen order. Callers hold mu.
func (s *DocumentStore) sorted() []*entry {
	out := slices.Collect(maps.Values(s.entries))
	slices.SortFunc(out, func(a, b *entry) int { return cmp.Compare(a.seq, b.seq) })
	return out
}

func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *doc
	s.entryFor(doc.ID).doc = &d
	return nil
}

// SaveChunks replaces the chunk set of the document named by the first chunk.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryFor(chunks[0].DocumentID).chunks = slices.Clone(chunks)
	return nil
}

func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.doc == nil {
		return nil, domain.ErrNotFound
	}
	d := *e.doc
	return &d, nil
}

func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[documentID]; ok {
		return slices.Clone(e.chunks), nil
	}
	return nil, nil
}

// AllChunks returns the chunks of every saved document in ingest order.
func (s *DocumentStore) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Chunk
	for _, e := range s.sorted() {
		if e.doc != nil {
			out = append(out, e.chunks...)
		}
	}
	return out, nil
}

func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; !ok || e.doc == nil {
		return domain.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// ListDocuments returns documents newest upload first. Equal timestamps
// keep ingest order.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.entries))
	for _, e := range s.sorted() {
		if e.doc != nil {
			out = append(out, *e.doc)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Document) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return out, nil
}
