package driven

import "github.com/custodia-labs/planroom/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved, so a
// typo in a model name surfaces in the settings screen rather than on the
// next question.
type AIConfigValidator interface {
	// ValidateEmbedding builds the embedder described by config and pings it.
	// The local provider always passes.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM builds the model described by config and pings it.
	// A disabled provider passes.
	ValidateLLM(config *domain.LLMSettings) error
}
