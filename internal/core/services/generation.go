package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// DefaultLLMTimeout bounds one generation call.
const DefaultLLMTimeout = 120 * time.Second

// maxContextChunks caps the chunks rendered into a prompt.
const maxContextChunks = 15

// chat runs one bounded generation call. Every failure wraps
// domain.ErrGenerationUnavailable, and a deadline also wraps
// domain.ErrTimeout.
func chat(
	ctx context.Context,
	llm driven.LLMService,
	timeout time.Duration,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
) (string, error) {
	if llm == nil {
		return "", fmt.Errorf("%w: no LLM provider configured", domain.ErrGenerationUnavailable)
	}
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := llm.Chat(callCtx, messages, opts)
	if err == nil {
		return out, nil
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("generate: %w: %w", domain.ErrGenerationUnavailable, domain.ErrTimeout)
	}
	if errors.Is(err, domain.ErrGenerationUnavailable) {
		return "", fmt.Errorf("generate: %w", err)
	}
	return "", fmt.Errorf("generate: %w: %w", domain.ErrGenerationUnavailable, err)
}

// renderPrompt loads a template and fills its %s placeholders.
// A user-edited template with the wrong number of placeholders is
// rejected rather than sent garbled.
func renderPrompt(prompts driven.PromptStore, name string, args ...any) (string, error) {
	tmpl, err := prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	if got := strings.Count(tmpl, "%s"); got != len(args) {
		return "", fmt.Errorf("%w: prompt %s has %d placeholders, want %d",
			domain.ErrInvalidInput, name, got, len(args))
	}
	if len(args) == 0 {
		return tmpl, nil
	}
	return fmt.Sprintf(tmpl, args...), nil
}

// buildContext renders matches as "[file, Page n]" blocks.
func buildContext(matches []domain.Match) string {
	if len(matches) > maxContextChunks {
		matches = matches[:maxContextChunks]
	}
	parts := make([]string, len(matches))
	for i := range matches {
		c := &matches[i].Chunk
		parts[i] = fmt.Sprintf("[%s, Page %d]\n%s", c.Filename, c.PageNumber, c.Content)
	}
	return strings.Join(parts, "\n\n")
}
