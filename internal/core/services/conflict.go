package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure ConflictService implements the interface.
var _ driving.ConflictService = (*ConflictService)(nil)

const (
	conflictTopK       = 10
	conflictExcerpts   = 3
	conflictMinMatches = 2
	conflictMinReply   = 50
	conflictMaxTokens  = 1000
	conflictTemp       = 0.1

	noConflictReply = "no conflict"

	analysisConflicts = "Analyzed common specification areas for inconsistencies"
	analysisClean     = "No conflicts detected in analyzed areas"
)

// ConflictService asks the model to compare excerpts on topics where
// drawings and specifications tend to disagree.
type ConflictService struct {
	retriever *Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	timeout   time.Duration
	topics    []string
}

// NewConflictService creates a conflict service over the default topics.
func NewConflictService(
	retriever *Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	timeout time.Duration,
) *ConflictService {
	return &ConflictService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		timeout:   timeout,
		topics:    domain.DefaultConflictTopics(),
	}
}

// Detect reviews each topic in turn. Topics with fewer than two
// matching chunks have nothing to compare and are skipped without a
// model call. Replies that say there is no conflict, or are too short to
// describe one, are dropped.
func (s *ConflictService) Detect(ctx context.Context) (*domain.ConflictReport, error) {
	logger.Section("Detect conflicts")

	report := &domain.ConflictReport{
		TopicsChecked: len(s.topics),
		Conflicts:     []domain.Conflict{},
	}
	for _, topic := range s.topics {
		conflict, err := s.review(ctx, topic)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			report.Conflicts = append(report.Conflicts, *conflict)
		}
	}

	report.ConflictsFound = len(report.Conflicts)
	report.Analysis = analysisClean
	if report.ConflictsFound > 0 {
		report.Analysis = analysisConflicts
	}
	logger.Info("Flagged %d of %d topics", report.ConflictsFound, report.TopicsChecked)
	return report, nil
}

func (s *ConflictService) review(ctx context.Context, topic string) (*domain.Conflict, error) {
	matches, err := s.retriever.Retrieve(ctx, topic+" specifications", domain.SearchOptions{TopK: conflictTopK})
	if err != nil {
		return nil, fmt.Errorf("retrieve %q: %w", topic, err)
	}
	if len(matches) < conflictMinMatches {
		logger.Debug("Skipping %q: %d matches", topic, len(matches))
		return nil, nil
	}
	excerpts := matches[:min(len(matches), conflictExcerpts)]

	system, err := renderPrompt(s.prompts, driven.PromptAnswerSystem)
	if err != nil {
		return nil, err
	}
	user, err := renderPrompt(s.prompts, driven.PromptConflictReview, topic, buildContext(excerpts))
	if err != nil {
		return nil, err
	}
	reply, err := chat(ctx, s.llm, s.timeout, []driven.ChatMessage{
		{Role: string(domain.RoleSystem), Content: system},
		{Role: string(domain.RoleUser), Content: user},
	}, driven.ChatOptions{MaxTokens: conflictMaxTokens, Temperature: conflictTemp})
	if err != nil {
		return nil, fmt.Errorf("review %q: %w", topic, err)
	}

	reply = strings.TrimSpace(reply)
	if len(reply) <= conflictMinReply || strings.Contains(strings.ToLower(reply), noConflictReply) {
		return nil, nil
	}
	return &domain.Conflict{
		Topic:      topic,
		Finding:    reply,
		Sources:    domain.SourcesFrom(excerpts, conflictExcerpts),
		Confidence: groundingConfidence(s.retriever, matches),
	}, nil
}
