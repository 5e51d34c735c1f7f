package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, retrieval weights and caching.

Settings are stored in config.toml inside the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for vector relevance.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes answers and extracts schedules.`,
	RunE:  runSettingsLLM,
}

var settingsWeightsCmd = &cobra.Command{
	Use:   "weights [lexical] [vector]",
	Short: "Set ranking weights",
	Long: `Set how keyword and vector relevance are blended when ranking chunks.

A vector weight of 0 disables embeddings entirely.

Examples:
  planroom settings weights 0.5 0.5
  planroom settings weights 1 0`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsWeights,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsWeightsCmd)
	rootCmd.AddCommand(settingsCmd)
}

// field is one "Name: value" line of settings output.
type field struct{ name, value string }

func printSection(cmd *cobra.Command, title string, fields []field) {
	cmd.Printf("[%s]\n", title)
	for _, f := range fields {
		cmd.Printf("  %s: %s\n", f.name, f.value)
	}
	cmd.Println()
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println()

	emb := s.Embedding
	embFields := providerFields(emb.Provider, emb.Model, emb.BaseURL, emb.APIKey, emb.IsConfigured())
	if emb.Provider == domain.AIProviderLocal {
		embFields = append(embFields, field{"Dimensions", strconv.Itoa(emb.Dimensions)})
	}
	printSection(cmd, "Embedding", embFields)

	llm := s.LLM
	printSection(cmd, "LLM", append(providerFields(llm.Provider, llm.Model, llm.BaseURL, llm.APIKey, llm.IsConfigured()),
		field{"Timeout", llm.Timeout.String()}))

	r := s.Retrieval
	printSection(cmd, "Retrieval", []field{
		{"Chunk size", fmt.Sprintf("%d (overlap %d)", r.ChunkSize, r.ChunkOverlap)},
		{"Top K", strconv.Itoa(r.TopK)},
		{"Weights", fmt.Sprintf("lexical %.2f, vector %.2f", r.LexicalWeight, r.VectorWeight)},
	})

	cache := []field{{"Backend", string(s.Cache.Backend)}, {"TTL", s.Cache.TTL.String()}}
	if s.Cache.Backend == domain.CacheBackendRedis {
		cache = append(cache, field{"Redis", fmt.Sprintf("%s (db %d)", s.Cache.RedisAddr, s.Cache.RedisDB)})
	}
	printSection(cmd, "Cache", cache)

	printSection(cmd, "Conversation", []field{{"History turns", strconv.Itoa(s.Conversation.HistoryTurns)}})

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'planroom settings embedding' or 'planroom settings weights' to fix.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func providerFields(provider domain.AIProvider, model, baseURL, apiKey string, configured bool) []field {
	if provider == "" {
		return []field{{"Provider", "(not set)"}, {"Status", "not configured"}}
	}
	out := []field{{"Provider", provider.Description()}, {"Model", model}}
	if provider == domain.AIProviderOllama {
		out = append(out, field{"Base URL", baseURL})
	}
	if provider.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		out = append(out, field{"API Key", key})
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	return append(out, field{"Status", status})
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), embeddingTarget)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), llmTarget)
}

func runSettingsWeights(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	lexical, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid lexical weight %q", args[0])
	}
	vector, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid vector weight %q", args[1])
	}

	if err := settingsService.SetWeights(lexical, vector); err != nil {
		return fmt.Errorf("failed to set weights: %w", err)
	}
	cmd.Printf("Weights set: lexical %.2f, vector %.2f\n", lexical, vector)
	return nil
}

// providerTarget describes one configurable AI role.
type providerTarget struct {
	label     string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

var embeddingTarget = providerTarget{
	label:     "Embedding",
	providers: domain.AllEmbeddingProviders(),
	models:    domain.DefaultEmbeddingModels(),
	set: func(p domain.AIProvider, model, key string) error {
		return settingsService.SetEmbeddingProvider(p, model, key)
	},
	validate: func() error { return settingsService.ValidateEmbeddingConfig() },
}

var llmTarget = providerTarget{
	label:     "LLM",
	providers: domain.AllLLMProviders(),
	models:    domain.DefaultLLMModels(),
	set: func(p domain.AIProvider, model, key string) error {
		return settingsService.SetLLMProvider(p, model, key)
	},
	validate: func() error { return settingsService.ValidateLLMConfig() },
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, target providerTarget) error {
	cmd.Printf("Select %s Provider\n", target.label)
	for i, p := range target.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(target.providers), 1)
	provider := target.providers[idx-1]

	defaultModel := target.models[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := target.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(target.label), err)
	}

	cmd.Print("Validating configuration... ")
	if err := target.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", strings.ToLower(target.label), err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", target.label, provider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is the terminal, otherwise it
// reads a plain line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
