// Package openai answers with the OpenAI chat completions endpoint, or any
// gateway that speaks it.
package openai

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/planroom/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the model and endpoint. APIKey is required.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService sends every call as a chat completion.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []apiclient.Message `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	Stop           []string            `json:"stop,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message apiclient.Message `json:"message"`
	} `json:"choices"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrInvalidInput)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	api := apiclient.New("openai", cmp.Or(cfg.BaseURL, DefaultBaseURL), cfg.Timeout, domain.ErrGenerationUnavailable)
	api.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	return &LLMService{api: api, model: cmp.Or(cfg.Model, DefaultLLMModel)}, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.complete(ctx, chatCompletionRequest{
		Model:       s.model,
		Messages:    []apiclient.Message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: apiclient.Temperature(opts.Temperature),
		Stop:        opts.StopWords,
	})
}

// Chat sends the transcript. JSON mode uses the json_object response format.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatCompletionRequest{
		Model:       s.model,
		Messages:    apiclient.Messages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: apiclient.Temperature(opts.Temperature),
	}
	if opts.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return s.complete(ctx, req)
}

func (s *LLMService) complete(ctx context.Context, req chatCompletionRequest) (string, error) {
	var resp chatCompletionResponse
	if err := s.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", s.api.Fail("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/models")
}

func (s *LLMService) Close() error { return nil }
