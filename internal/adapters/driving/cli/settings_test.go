package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	for in, want := range map[string]string{
		"":                         "****",
		"abc123":                   "****",
		"12345678":                 "****",
		"sk-1234567890abcdef":      "sk-1...cdef",
		"sk-ant-api03-planroom-xy": "sk-a...m-xy",
	} {
		assert.Equal(t, want, maskAPIKey(in), "key %q", in)
	}
}

func TestParseChoice(t *testing.T) {
	// Three providers, default 1.
	cases := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"2", 2},
		{"3", 3},
		{"0", 1},
		{"4", 1},
		{"-1", 1},
		{"ollama", 1},
		{"   ", 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, parseChoice(c.in, 3, 1), "input %q", c.in)
	}

	assert.Equal(t, 2, parseChoice("x", 5, 2), "default is returned as given")
}

func TestReadLine_TrimsAndToleratesEOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  nomic-embed-text \nlast"))

	assert.Equal(t, "nomic-embed-text", readLine(r))
	assert.Equal(t, "last", readLine(r))
	assert.Empty(t, readLine(r))
}

func TestReadPassword_FallsBackToLine(t *testing.T) {
	in := strings.NewReader("sk-live-key\n")

	assert.Equal(t, "sk-live-key", readPassword(in, bufio.NewReader(in)))
}

func TestSettingsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Provider: (not set)")
	assert.Contains(t, out, "Weights: lexical 0.50, vector 0.50")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsWeights(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "weights", "0.7", "0.3")

	require.NoError(t, err)
	assert.Contains(t, out, "Weights set: lexical 0.70, vector 0.30")
	assert.InDelta(t, 0.7, mocks.settings.lexical, 1e-9)
	assert.InDelta(t, 0.3, mocks.settings.vector, 1e-9)
}

func TestSettingsWeights_Invalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "settings", "weights", "heavy", "0.3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid lexical weight")

	_, err = execute(t, "settings", "weights", "0", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("3\n\nsk-test-1234567890\n"))
	defer rootCmd.SetIn(nil)

	out, err := execute(t, "settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Equal(t, domain.AIProviderOpenAI, mocks.settings.settings.Embedding.Provider)
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderOpenAI], mocks.settings.settings.Embedding.Model)
	assert.Equal(t, "sk-test-1234567890", mocks.settings.settings.Embedding.APIKey)
}

func TestSettingsLLM_MissingAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("3\nclaude-model\n\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.Empty(t, mocks.settings.settings.LLM.Provider)
}
