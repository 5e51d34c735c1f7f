package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

const (
	extractionTopK       = 10
	extractionMaxSources = 10
	extractionMaxTokens  = 2000
	extractionTemp       = 0.1
)

var errNoArray = errors.New("no record array in response")

// ExtractionService turns retrieved chunks into typed records.
// Results are never cached.
type ExtractionService struct {
	retriever *Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	timeout   time.Duration
}

// NewExtractionService creates an extraction service. llm may be nil,
// in which case extraction over a non-empty corpus fails with
// domain.ErrGenerationUnavailable.
func NewExtractionService(
	retriever *Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	timeout time.Duration,
) *ExtractionService {
	return &ExtractionService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		timeout:   timeout,
	}
}

// Extract runs the schema's queries concurrently, merges their matches
// and asks the model for a JSON array of records.
func (s *ExtractionService) Extract(ctx context.Context, name string) (*domain.ExtractionResult, error) {
	schema, err := domain.ParseSchema(name)
	if err != nil {
		return nil, err
	}
	logger.Section("Extract " + schema.String())

	matches, err := s.gather(ctx, schema)
	if err != nil {
		return nil, err
	}

	result := &domain.ExtractionResult{
		Schema:  schema,
		Data:    domain.EmptyRecords(schema),
		Sources: domain.SourcesFrom(matches, extractionMaxSources),
	}
	if len(matches) == 0 {
		logger.Info("No matching chunks for %s", schema)
		return result, nil
	}

	raw, err := s.generate(ctx, schema, matches)
	if err != nil {
		return nil, err
	}

	data, count, err := parseStrict(schema, raw)
	if err != nil {
		logger.Debug("Strict parse failed: %v", err)
		data, count, err = recoverArray(schema, raw)
	}
	if err != nil {
		logger.Warn("Could not parse %s records: %v", schema, err)
		return result, nil
	}

	result.Data = data
	result.Count = count
	logger.Info("Extracted %d %s records", count, schema)
	return result, nil
}

// gather retrieves every schema query in parallel and merges the
// matches in query order, dropping chunks whose text was already seen.
func (s *ExtractionService) gather(ctx context.Context, schema domain.Schema) ([]domain.Match, error) {
	queries := schema.Queries()
	perQuery := make([][]domain.Match, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			matches, err := s.retriever.Retrieve(gctx, q, domain.SearchOptions{TopK: extractionTopK})
			if err != nil {
				return fmt.Errorf("retrieve %q: %w", q, err)
			}
			perQuery[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Schedules are often bare tables ("D-101, 900mm, 1 HR") that share no
	// term with any schema query. Feed the model the nearest chunks instead.
	if allEmpty(perQuery) {
		logger.Debug("No schema query matched, falling back to nearest chunks")
		nearest, err := s.retriever.Nearest(ctx, strings.Join(queries, " "), domain.SearchOptions{TopK: extractionTopK})
		if err != nil {
			return nil, fmt.Errorf("nearest chunks: %w", err)
		}
		perQuery = [][]domain.Match{nearest}
	}

	seen := make(map[string]bool)
	var merged []domain.Match
	for _, matches := range perQuery {
		for _, m := range matches {
			if seen[m.Chunk.Content] {
				continue
			}
			seen[m.Chunk.Content] = true
			merged = append(merged, m)
		}
	}
	logger.Debug("Merged %d unique chunks from %d queries", len(merged), len(queries))
	return merged, nil
}

func allEmpty(perQuery [][]domain.Match) bool {
	for _, m := range perQuery {
		if len(m) > 0 {
			return false
		}
	}
	return true
}

func (s *ExtractionService) generate(ctx context.Context, schema domain.Schema, matches []domain.Match) (string, error) {
	system, err := renderPrompt(s.prompts, driven.PromptExtractionSystem)
	if err != nil {
		return "", err
	}
	user, err := renderPrompt(s.prompts, driven.PromptExtractionFor(schema), buildContext(matches))
	if err != nil {
		return "", err
	}

	return chat(ctx, s.llm, s.timeout, []driven.ChatMessage{
		{Role: string(domain.RoleSystem), Content: system},
		{Role: string(domain.RoleUser), Content: user},
	}, driven.ChatOptions{
		MaxTokens:   extractionMaxTokens,
		Temperature: extractionTemp,
		JSONMode:    true,
	})
}

// parseStrict accepts a bare JSON array, or an object holding the array
// under one of domain.ArrayKeys.
func parseStrict(schema domain.Schema, raw string) (any, int, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, 0, errNoArray
	}
	if data[0] == '[' {
		return domain.DecodeRecords(schema, data)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, 0, err
	}
	for _, key := range domain.ArrayKeys {
		v := bytes.TrimSpace(obj[key])
		if len(v) > 0 && v[0] == '[' {
			return domain.DecodeRecords(schema, v)
		}
	}
	return nil, 0, errNoArray
}

// recoverArray strictly parses the text between the first '[' and the
// last ']'. Models sometimes wrap JSON in prose or code fences.
func recoverArray(schema domain.Schema, raw string) (any, int, error) {
	start := bytes.IndexByte([]byte(raw), '[')
	end := bytes.LastIndexByte([]byte(raw), ']')
	if start < 0 || end <= start {
		return nil, 0, errNoArray
	}
	return parseStrict(schema, raw[start:end+1])
}
