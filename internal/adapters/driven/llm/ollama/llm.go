// Package ollama answers with a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"time"

	"github.com/custodia-labs/planroom/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the model and server.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/chat without streaming.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string              `json:"model"`
	Messages []apiclient.Message `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   string              `json:"format,omitempty"`
	Options  *options            `json:"options,omitempty"`
}

type chatResponse struct {
	Message apiclient.Message `json:"message"`
}

// NewLLMService fills in defaults. No connection is made.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		api:   apiclient.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), cfg.Timeout, domain.ErrGenerationUnavailable),
		model: cmp.Or(cfg.Model, DefaultLLMModel),
	}
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := chatRequest{
		Model:    s.model,
		Messages: []apiclient.Message{{Role: "user", Content: prompt}},
		Options:  tuning(opts.MaxTokens, opts.Temperature, opts.StopWords),
	}
	return s.chat(ctx, req)
}

// Chat sends the transcript. JSON mode sets format "json".
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{
		Model:    s.model,
		Messages: apiclient.Messages(messages),
		Options:  tuning(opts.MaxTokens, opts.Temperature, nil),
	}
	if opts.JSONMode {
		req.Format = "json"
	}
	return s.chat(ctx, req)
}

// tuning returns nil when every knob is at its default.
func tuning(maxTokens int, temperature float64, stop []string) *options {
	if maxTokens <= 0 && temperature <= 0 && len(stop) == 0 {
		return nil
	}
	return &options{NumPredict: maxTokens, Temperature: apiclient.Temperature(temperature), Stop: stop}
}

func (s *LLMService) chat(ctx context.Context, req chatRequest) (string, error) {
	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists local models.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/api/tags")
}

func (s *LLMService) Close() error { return nil }
