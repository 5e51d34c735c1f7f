package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTimeout      = "llm.timeout_seconds"
	keyChunkSize       = "retrieval.chunk_size"
	keyChunkOverlap    = "retrieval.chunk_overlap"
	keyTopK            = "retrieval.top_k"
	keyLexicalWeight   = "retrieval.lexical_weight"
	keyVectorWeight    = "retrieval.vector_weight"
	keyEmbedTimeout    = "retrieval.embed_timeout_seconds"
	keyEmbedRate       = "retrieval.embed_rate_per_second"
	keyCacheBackend    = "cache.backend"
	keyCacheTTL        = "cache.ttl_seconds"
	keyRedisAddr       = "cache.redis_addr"
	keyRedisPassword   = "cache.redis_password"
	keyRedisDB         = "cache.redis_db"
	keyHistoryTurns    = "conversation.history_turns"
	defaultOllamaURL   = "http://localhost:11434"
	envOpenAIAPIKey    = "OPENAI_API_KEY"
	envAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing or invalid
// values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // Empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDimensions, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Timeout:  s.getSeconds(keyLLMTimeout, d.LLM.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:          s.getInt(keyChunkSize, d.Retrieval.ChunkSize),
			ChunkOverlap:       s.getInt(keyChunkOverlap, d.Retrieval.ChunkOverlap),
			TopK:               s.getInt(keyTopK, d.Retrieval.TopK),
			LexicalWeight:      s.getFloat(keyLexicalWeight, d.Retrieval.LexicalWeight),
			VectorWeight:       s.getFloat(keyVectorWeight, d.Retrieval.VectorWeight),
			EmbedTimeout:       s.getSeconds(keyEmbedTimeout, d.Retrieval.EmbedTimeout),
			EmbedRatePerSecond: s.getFloat(keyEmbedRate, d.Retrieval.EmbedRatePerSecond),
		},
		Cache: domain.CacheSettings{
			Backend:       s.getBackend(d.Cache.Backend),
			TTL:           s.getSeconds(keyCacheTTL, d.Cache.TTL),
			RedisAddr:     s.getString(keyRedisAddr, d.Cache.RedisAddr),
			RedisPassword: s.configStore.GetString(keyRedisPassword),
			RedisDB:       s.configStore.GetInt(keyRedisDB),
		},
		Conversation: domain.ConversationSettings{
			HistoryTurns: s.getInt(keyHistoryTurns, d.Conversation.HistoryTurns),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists application settings. Empty API keys are not written so
// keys supplied by the environment never end up on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTimeout, int(settings.LLM.Timeout / time.Second)},
		{keyChunkSize, settings.Retrieval.ChunkSize},
		{keyChunkOverlap, settings.Retrieval.ChunkOverlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyLexicalWeight, settings.Retrieval.LexicalWeight},
		{keyVectorWeight, settings.Retrieval.VectorWeight},
		{keyEmbedTimeout, int(settings.Retrieval.EmbedTimeout / time.Second)},
		{keyEmbedRate, settings.Retrieval.EmbedRatePerSecond},
		{keyCacheBackend, string(settings.Cache.Backend)},
		{keyCacheTTL, int(settings.Cache.TTL / time.Second)},
		{keyRedisAddr, settings.Cache.RedisAddr},
		{keyRedisDB, settings.Cache.RedisDB},
		{keyHistoryTurns, settings.Conversation.HistoryTurns},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:   settings.Embedding.APIKey,
		keyLLMAPIKey:     settings.LLM.APIKey,
		keyRedisPassword: settings.Cache.RedisPassword,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support generation", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetWeights configures the fusion weights.
func (s *SettingsService) SetWeights(lexical, vector float64) error {
	if err := validateWeights(lexical, vector); err != nil {
		return err
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Retrieval.LexicalWeight = lexical
	settings.Retrieval.VectorWeight = vector
	return s.Save(settings)
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings checks that settings are usable for ingestion and
// retrieval.
func ValidateSettings(settings *domain.AppSettings) error {
	r := settings.Retrieval

	if r.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidInput)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", domain.ErrInvalidInput)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidInput)
	}
	if err := validateWeights(r.LexicalWeight, r.VectorWeight); err != nil {
		return err
	}
	if !r.LexicalOnly() && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: vector_weight > 0 requires an embedding provider", domain.ErrInvalidInput)
	}
	if !settings.Cache.Backend.IsValid() {
		return fmt.Errorf("%w: unknown cache backend %q", domain.ErrInvalidInput, settings.Cache.Backend)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ApplyEnvKeys fills empty API keys from the environment.
func ApplyEnvKeys(settings *domain.AppSettings, getenv func(string) string) {
	envKey := func(p domain.AIProvider) string {
		switch p {
		case domain.AIProviderOpenAI:
			return getenv(envOpenAIAPIKey)
		case domain.AIProviderAnthropic:
			return getenv(envAnthropicAPIKey)
		default:
			return ""
		}
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = envKey(settings.LLM.Provider)
	}
}

func validateWeights(lexical, vector float64) error {
	if lexical < 0 || vector < 0 {
		return fmt.Errorf("%w: weights must not be negative", domain.ErrInvalidInput)
	}
	if lexical == 0 && vector == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// baseURLFor keeps a configured endpoint for Ollama and clears it for
// providers that do not need one.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat distinguishes an explicit zero from a missing key, since a
// zero vector weight is meaningful.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.configStore.GetInt(key)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
