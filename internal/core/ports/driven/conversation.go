package driven

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// ConversationStore keeps chat histories.
// A conversation is created by its first Append and is never expired.
type ConversationStore interface {
	// Append adds a turn, creating the conversation if needed.
	Append(ctx context.Context, id string, turn domain.Turn) error

	// Window returns the last maxTurns turns in order.
	// An unknown conversation yields an empty window.
	Window(ctx context.Context, id string, maxTurns int) ([]domain.Turn, error)

	// Clear removes one conversation.
	Clear(ctx context.Context, id string) error
}

// QueryLog records answered queries for analytics.
type QueryLog interface {
	// Record appends one query.
	Record(ctx context.Context, rec domain.QueryRecord) error

	// Records returns every logged query, oldest first.
	Records(ctx context.Context) ([]domain.QueryRecord, error)
}
