// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	localembed "github.com/custodia-labs/planroom/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/planroom/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/planroom/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/planroom/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/planroom/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/planroom/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to provider errors shown to the user.
const fixHint = "Run 'planroom settings' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if vector scoring was disabled.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the embedding and generation services for the given settings.
// An unreachable embedding provider is not fatal: the result carries a
// warning and FellBack is set so callers switch to lexical-only ranking.
// An unconfigured or unreachable LLM leaves LLMService nil with a warning.
func Init(settings *domain.AppSettings, analyzer driven.Analyzer) *InitResult {
	result := &InitResult{}

	if !settings.Retrieval.LexicalOnly() {
		svc, err := CreateAndValidateEmbeddingService(&settings.Embedding, analyzer)
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, err.Error())
			result.FellBack = true
		case svc == nil:
			result.Warnings = append(result.Warnings, "embedding provider not configured, using keyword ranking only")
			result.FellBack = true
		default:
			result.EmbeddingService = svc
		}
	}

	svc, err := CreateAndValidateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case svc == nil:
		result.Warnings = append(result.Warnings, "LLM provider not configured, answers are unavailable")
	default:
		result.LLMService = svc
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	settings *domain.EmbeddingSettings,
	analyzer driven.Analyzer,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings, analyzer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrGenerationUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrGenerationUnavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings, analyzer driven.Analyzer) error {
	svc, err := CreateEmbeddingService(settings, analyzer)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// ValidateLLMConfig creates an LLM service and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(
	settings *domain.EmbeddingSettings,
	analyzer driven.Analyzer,
) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use local, ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		if analyzer == nil {
			return nil, fmt.Errorf("local embeddings need an analyzer")
		}
		return localembed.NewEmbeddingService(analyzer, settings.Dimensions), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the generation service selected by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(svc pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
