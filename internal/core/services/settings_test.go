package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, domain.AIProviderLocal, settings.Embedding.Provider)
	assert.Equal(t, "hashing", settings.Embedding.Model)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Cache, settings.Cache)
	assert.Equal(t, defaults.Conversation, settings.Conversation)
	assert.Equal(t, defaults.LLM.Timeout, settings.LLM.Timeout)
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("retrieval.top_k", 8)
	_ = store.Set("retrieval.vector_weight", 0)
	_ = store.Set("cache.backend", "redis")
	_ = store.Set("cache.ttl_seconds", 600)

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Zero(t, settings.Retrieval.VectorWeight, "an explicit zero weight is kept")
	assert.True(t, settings.Retrieval.LexicalOnly())
	assert.Equal(t, domain.CacheBackendRedis, settings.Cache.Backend)
	assert.Equal(t, 10*time.Minute, settings.Cache.TTL)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("cache.backend", "memcached")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderLocal, settings.Embedding.Provider)
	assert.Equal(t, domain.CacheBackendMemory, settings.Cache.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  "http://gpu-box:11434",
		Timeout:  45 * time.Second,
	}
	settings.Retrieval.LexicalWeight = 0.7
	settings.Retrieval.VectorWeight = 0.3
	settings.Conversation.HistoryTurns = 4

	require.NoError(t, service.Save(&settings))
	got, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, settings.LLM, got.LLM)
	assert.InDelta(t, 0.7, got.Retrieval.LexicalWeight, 1e-9)
	assert.InDelta(t, 0.3, got.Retrieval.VectorWeight, 1e-9)
	assert.Equal(t, 4, got.Conversation.HistoryTurns)
}

func TestSettingsService_SaveSkipsEmptySecrets(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	settings := domain.DefaultAppSettings()

	require.NoError(t, service.Save(&settings))

	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
	_, exists = store.Get("cache.redis_password")
	assert.False(t, exists)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)

	err = service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = service.SetEmbeddingProvider("bogus", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "sk-test"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)

	err = service.SetLLMProvider(domain.AIProviderLocal, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetWeights(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetWeights(1, 0))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, settings.Retrieval.LexicalWeight, 1e-9)
	assert.True(t, settings.Retrieval.LexicalOnly())

	assert.ErrorIs(t, service.SetWeights(0, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetWeights(-1, 1), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"defaults", nil, false},
		{"overlap too large", map[string]any{"retrieval.chunk_size": 100, "retrieval.chunk_overlap": 100}, true},
		{"negative overlap", map[string]any{"retrieval.chunk_overlap": -1}, true},
		{"both weights zero", map[string]any{"retrieval.lexical_weight": 0, "retrieval.vector_weight": 0}, true},
		{"vector without key", map[string]any{"embedding.provider": "openai"}, true},
		{"lexical only without key", map[string]any{"embedding.provider": "openai", "retrieval.vector_weight": 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}
			err := NewSettingsService(store, nil).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type stubValidator struct {
	embedErr, llmErr error
}

func (v stubValidator) ValidateEmbedding(*domain.EmbeddingSettings) error { return v.embedErr }
func (v stubValidator) ValidateLLM(*domain.LLMSettings) error             { return v.llmErr }

func TestSettingsService_ValidateProviders(t *testing.T) {
	ping := errors.New("unreachable")

	service := NewSettingsService(memory.NewConfigStore(), stubValidator{embedErr: ping, llmErr: ping})
	assert.ErrorIs(t, service.ValidateEmbeddingConfig(), ping)
	assert.ErrorIs(t, service.ValidateLLMConfig(), ping)

	service = NewSettingsService(memory.NewConfigStore(), nil)
	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestApplyEnvKeys(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "sk-env", "ANTHROPIC_API_KEY": "ant-env"}
	getenv := func(k string) string { return env[k] }

	settings := domain.AppSettings{
		Embedding: domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
		LLM:       domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "configured"},
	}
	ApplyEnvKeys(&settings, getenv)

	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "configured", settings.LLM.APIKey, "configured keys win")

	local := domain.DefaultAppSettings()
	ApplyEnvKeys(&local, getenv)
	assert.Empty(t, local.Embedding.APIKey)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
