package driving

import "github.com/custodia-labs/planroom/internal/core/domain"

// SettingsService reads and changes the persisted AppSettings.
// Changes take effect on the next bootstrap of the RAG engine.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// Validate rejects settings the engine cannot run with, such as a
	// nonzero vector weight without an embedding provider.
	Validate() error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetWeights sets the lexical and vector shares of the fused score.
	SetWeights(lexical, vector float64) error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error
	// ValidateLLMConfig pings the configured answer model.
	ValidateLLMConfig() error
}
