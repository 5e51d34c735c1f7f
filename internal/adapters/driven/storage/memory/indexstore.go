package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Chunks are kept in insertion order; a re-added ID keeps its slot.
type IndexStore struct {
	mu       sync.RWMutex
	chunks   []domain.Chunk
	position map[string]int
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		position: make(map[string]int),
	}
}

// Add stores a chunk, overwriting any chunk with the same ID in place.
func (s *IndexStore) Add(_ context.Context, chunk *domain.Chunk) error {
	if chunk == nil || chunk.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos, ok := s.position[chunk.ID]; ok {
		s.chunks[pos] = *chunk
		return nil
	}
	s.position[chunk.ID] = len(s.chunks)
	s.chunks = append(s.chunks, *chunk)
	return nil
}

// All returns a snapshot of every chunk.
func (s *IndexStore) All(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Select returns a snapshot of the chunks accepted by keep.
func (s *IndexStore) Select(_ context.Context, keep func(*domain.Chunk) bool) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, 0, len(s.chunks))
	for i := range s.chunks {
		if keep == nil || keep(&s.chunks[i]) {
			out = append(out, s.chunks[i])
		}
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (s *IndexStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// DeleteDocument removes every chunk of a document. The relative order
// of the remaining chunks is preserved.
func (s *IndexStore) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	clear(s.chunks[len(kept):])
	s.chunks = kept
	s.position = make(map[string]int, len(kept))
	for i := range kept {
		s.position[kept[i].ID] = i
	}
	return nil
}
