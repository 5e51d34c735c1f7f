package domain

import "time"

// AIProvider names a model backend for embeddings, generation or both.
type AIProvider string

const (
	// AIProviderLocal is the built-in feature hashing embedder. It runs
	// offline and cannot generate text.
	AIProviderLocal     AIProvider = "local"
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

type providerTraits struct {
	description string
	apiKey      bool
	local       bool
	embeds      bool
	generates   bool
}

// providers is ordered as the settings menus list them.
var providers = []struct {
	id AIProvider
	providerTraits
}{
	{AIProviderLocal, providerTraits{"Local (feature hashing, offline)", false, true, true, false}},
	{AIProviderOllama, providerTraits{"Ollama (local)", false, true, true, true}},
	{AIProviderOpenAI, providerTraits{"OpenAI (cloud)", true, false, true, true}},
	{AIProviderAnthropic, providerTraits{"Anthropic (cloud)", true, false, false, true}},
}

func (p AIProvider) traits() (providerTraits, bool) {
	for _, e := range providers {
		if e.id == p {
			return e.providerTraits, true
		}
	}
	return providerTraits{}, false
}

func (p AIProvider) IsValid() bool {
	_, ok := p.traits()
	return ok
}

func (p AIProvider) RequiresAPIKey() bool {
	t, _ := p.traits()
	return t.apiKey
}

// IsLocal reports whether the provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	t, _ := p.traits()
	return t.local
}

func (p AIProvider) String() string {
	return string(p)
}

// Description is the label shown in settings menus.
func (p AIProvider) Description() string {
	if t, ok := p.traits(); ok {
		return t.description
	}
	return "Unknown"
}

func providersWhere(keep func(providerTraits) bool) []AIProvider {
	var out []AIProvider
	for _, e := range providers {
		if keep(e.providerTraits) {
			out = append(out, e.id)
		}
	}
	return out
}

// AllEmbeddingProviders lists providers that can embed text.
func AllEmbeddingProviders() []AIProvider {
	return providersWhere(func(t providerTraits) bool { return t.embeds })
}

// AllLLMProviders lists providers that can generate answers.
func AllLLMProviders() []AIProvider {
	return providersWhere(func(t providerTraits) bool { return t.generates })
}

// configured is shared by the embedding and LLM checks.
func configured(p AIProvider, apiKey string, role func(providerTraits) bool) bool {
	t, ok := p.traits()
	return ok && role(t) && (!t.apiKey || apiKey != "")
}

// EmbeddingSettings selects the embedder. BaseURL applies to Ollama and
// Dimensions to the local hashing embedder.
type EmbeddingSettings struct {
	Provider   AIProvider
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
}

// IsConfigured reports whether the provider can embed with what is set.
func (e EmbeddingSettings) IsConfigured() bool {
	return configured(e.Provider, e.APIKey, func(t providerTraits) bool { return t.embeds })
}

// LLMSettings selects the generator used for answers and extraction.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
	// Timeout bounds one generation call.
	Timeout time.Duration
}

// IsConfigured reports whether the provider can generate with what is set.
func (l LLMSettings) IsConfigured() bool {
	return configured(l.Provider, l.APIKey, func(t providerTraits) bool { return t.generates })
}

// RetrievalSettings holds chunking and ranking configuration.
type RetrievalSettings struct {
	// ChunkSize is the window length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent windows.
	ChunkOverlap int

	// TopK is the default number of matches per query.
	TopK int

	// LexicalWeight scales the normalised lexical score.
	LexicalWeight float64

	// VectorWeight scales the normalised vector score.
	// Zero disables query embedding entirely.
	VectorWeight float64

	// EmbedTimeout bounds one embedding call.
	EmbedTimeout time.Duration

	// EmbedRatePerSecond limits embedding calls during ingestion.
	// Zero means unlimited.
	EmbedRatePerSecond float64
}

// LexicalOnly returns true when vector scoring is disabled.
func (r RetrievalSettings) LexicalOnly() bool {
	return r.VectorWeight == 0
}

// CacheBackend identifies where answers are cached.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendMemory || b == CacheBackendRedis
}

// CacheSettings holds result cache configuration.
type CacheSettings struct {
	// Backend selects the cache implementation.
	Backend CacheBackend

	// TTL is how long an answer stays fresh.
	TTL time.Duration

	// RedisAddr is host:port of the redis server.
	RedisAddr string

	// RedisPassword is optional.
	RedisPassword string

	// RedisDB is the redis database number.
	RedisDB int
}

// ConversationSettings holds conversation context configuration.
type ConversationSettings struct {
	// HistoryTurns is the number of prior turns sent with a query.
	HistoryTurns int
}

// AppSettings is everything persisted in config.toml.
type AppSettings struct {
	Embedding    EmbeddingSettings
	LLM          LLMSettings
	Retrieval    RetrievalSettings
	Cache        CacheSettings
	Conversation ConversationSettings
}

// DefaultAppSettings embeds locally and leaves generation unset until
// the user picks a provider.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Dimensions: 256,
		},
		LLM: LLMSettings{
			Timeout: 120 * time.Second,
		},
		Retrieval: RetrievalSettings{
			ChunkSize:     1000,
			ChunkOverlap:  200,
			TopK:          5,
			LexicalWeight: 0.5,
			VectorWeight:  0.5,
			EmbedTimeout:  30 * time.Second,
		},
		Cache: CacheSettings{
			Backend:   CacheBackendMemory,
			TTL:       DefaultCacheTTL,
			RedisAddr: "localhost:6379",
		},
		Conversation: ConversationSettings{
			HistoryTurns: DefaultHistoryTurns,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// PipelineConfig names the ingest stages in run order with loosely typed
// options per stage.
type PipelineConfig struct {
	Processors       []string
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns the options for name, or nil.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the ingestion pipeline from retrieval settings.
// Chunking runs first, then term analysis, then embedding.
func PipelineConfigFor(r RetrievalSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "terms", "embedder"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": r.ChunkSize,
				"overlap":    r.ChunkOverlap,
			},
			"embedder": {
				"rate_per_second": r.EmbedRatePerSecond,
				"timeout":         r.EmbedTimeout,
			},
		},
	}
}
