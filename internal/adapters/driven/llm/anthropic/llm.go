// Package anthropic answers with the Anthropic Messages API.
package anthropic

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/planroom/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	defaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"

	// jsonInstruction stands in for a response format switch, which the
	// Messages API lacks.
	jsonInstruction = "Respond with a single valid JSON document and nothing else."
)

// Config selects the model and endpoint. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService sends every call to /v1/messages.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type messagesRequest struct {
	Model       string              `json:"model"`
	System      string              `json:"system,omitempty"`
	Messages    []apiclient.Message `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature *float64            `json:"temperature,omitempty"`
	StopSeqs    []string            `json:"stop_sequences,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required: %w", domain.ErrInvalidInput)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	api := apiclient.New("anthropic", cmp.Or(cfg.BaseURL, DefaultBaseURL), cfg.Timeout, domain.ErrGenerationUnavailable)
	api.SetHeader("x-api-key", cfg.APIKey)
	api.SetHeader("anthropic-version", anthropicVersion)
	return &LLMService{api: api, model: cmp.Or(cfg.Model, DefaultModel)}, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request("", []driven.ChatMessage{{Role: "user", Content: prompt}}, opts.MaxTokens, opts.Temperature)
	req.StopSeqs = opts.StopWords
	return s.send(ctx, req)
}

// Chat sends the transcript. System turns move to the top-level system
// field, which is the only place the API accepts them.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	turns := make([]driven.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == string(domain.RoleSystem) {
			system = append(system, m.Content)
		} else {
			turns = append(turns, m)
		}
	}
	if opts.JSONMode {
		system = append(system, jsonInstruction)
	}
	return s.send(ctx, s.request(strings.Join(system, "\n\n"), turns, opts.MaxTokens, opts.Temperature))
}

func (s *LLMService) request(system string, turns []driven.ChatMessage, maxTokens int, temperature float64) messagesRequest {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return messagesRequest{
		Model:       s.model,
		System:      system,
		Messages:    apiclient.Messages(turns),
		MaxTokens:   maxTokens,
		Temperature: apiclient.Temperature(temperature),
	}
}

// send joins the text blocks of the reply.
func (s *LLMService) send(ctx context.Context, req messagesRequest) (string, error) {
	var resp messagesResponse
	if err := s.api.Post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", s.api.Fail("no text content returned")
	}
	return text.String(), nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/v1/models")
}

func (s *LLMService) Close() error { return nil }
