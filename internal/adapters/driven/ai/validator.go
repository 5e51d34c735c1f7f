package ai

import (
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct {
	analyzer driven.Analyzer
}

// NewConfigValidator creates a new AI config validator. The analyzer is
// used to build the local embedder.
func NewConfigValidator(analyzer driven.Analyzer) *ConfigValidator {
	return &ConfigValidator{analyzer: analyzer}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config, v.analyzer)
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}
