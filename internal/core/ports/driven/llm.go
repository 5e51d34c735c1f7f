package driven

import "context"

// LLMService writes answers and extraction JSON from retrieved context.
// Failures are wrapped in domain.ErrGenerationUnavailable so callers can
// fall back to an extractive answer.
type LLMService interface {
	// Generate completes a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat completes a transcript whose last message is the question.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tune a single completion. Zero values use provider defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one transcript entry. Role is system, user or assistant.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tune a chat completion.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64

	// JSONMode asks for a bare JSON document. Providers without a native
	// switch get an instruction appended instead.
	JSONMode bool
}
