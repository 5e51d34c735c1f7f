package driving

import (
	"context"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// QueryRequest is a natural-language question.
type QueryRequest struct {
	// Text is the question.
	Text string `json:"query"`

	// Filters narrows retrieval.
	Filters domain.Filters `json:"filters"`

	// ConversationID continues a conversation. Empty starts a new one.
	ConversationID string `json:"conversation_id,omitempty"`
}

// Answer is a grounded response.
type Answer struct {
	Answer         string            `json:"answer"`
	Sources        []domain.Source   `json:"sources"`
	Confidence     domain.Confidence `json:"confidence"`
	StructuredData any               `json:"structured_data,omitempty"`
	ConversationID string            `json:"conversation_id"`
	Cached         bool              `json:"cached"`
}

// QueryService answers questions against the corpus.
type QueryService interface {
	// Query retrieves, generates and caches an answer.
	Query(ctx context.Context, req QueryRequest) (*Answer, error)
}
