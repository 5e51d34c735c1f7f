package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

func TestChat_LiftsSystemAndAddsJSONInstruction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be precise\n\n"+jsonInstruction, req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"data\":"},{"type":"text","text":"[]}"}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be precise"},
		{Role: "user", Content: "rooms"},
	}, driven.ChatOptions{JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, out)
}

func TestChat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
