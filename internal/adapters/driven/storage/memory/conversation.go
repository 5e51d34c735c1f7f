package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
// Histories grow without bound; only the window read is limited.
type ConversationStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.Turn
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		turns: make(map[string][]domain.Turn),
	}
}

// Append adds a turn, creating the conversation if needed.
func (s *ConversationStore) Append(_ context.Context, id string, turn domain.Turn) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[id] = append(s.turns[id], turn)
	return nil
}

// Window returns a copy of the last maxTurns turns in order.
// A non-positive maxTurns returns the whole history.
func (s *ConversationStore) Window(_ context.Context, id string, maxTurns int) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[id]
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Clear removes one conversation.
func (s *ConversationStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, id)
	return nil
}
