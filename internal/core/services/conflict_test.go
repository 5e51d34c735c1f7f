package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/analysis"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

const conflictFinding = "Sheet A-601 lists door D-101 as 1 HR while section 08 11 13 requires 90 minute doors at stair cores."

func newConflictService(llm driven.LLMService) *ConflictService {
	index := newIndex(
		chunk("plans", "A-601.pdf", 1, 0, "Door fire ratings: D-101 1 HR hollow metal."),
		chunk("spec", "Spec 08 11 13.pdf", 4, 0, "Door fire ratings at stair cores shall be 90 minutes."),
		chunk("spec", "Spec 08 11 13.pdf", 5, 1, "Floor finishes: polished concrete in lobby."),
	)
	return NewConflictService(NewRetriever(index, analysis.New(), nil), llm, newMockPrompts(), time.Second)
}

func TestConflictService_FlagsDisagreement(t *testing.T) {
	llm := &mockLLM{reply: "  " + conflictFinding + "\n"}
	svc := newConflictService(llm)

	report, err := svc.Detect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(domain.DefaultConflictTopics()), report.TopicsChecked)
	assert.Equal(t, analysisConflicts, report.Analysis)
	require.NotEmpty(t, report.Conflicts)
	assert.Equal(t, len(report.Conflicts), report.ConflictsFound)

	first := report.Conflicts[0]
	assert.Equal(t, "door fire ratings", first.Topic)
	assert.Equal(t, conflictFinding, first.Finding)
	assert.NotEmpty(t, first.Sources)
	assert.LessOrEqual(t, len(first.Sources), conflictExcerpts)
	assert.NotEqual(t, domain.ConfidenceNone, first.Confidence)

	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, string(domain.RoleSystem), msgs[0].Role)
	assert.Contains(t, msgs[1].Content, "Conflicts about door fire ratings")
	assert.Contains(t, msgs[1].Content, "[A-601.pdf, Page 1]")
}

func TestConflictService_DropsAgreeingReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"explicit no conflict", "No conflicts detected. Both sheets list the same door ratings for every opening."},
		{"too short", "Ratings look consistent."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{reply: tt.reply}
			report, err := newConflictService(llm).Detect(context.Background())
			require.NoError(t, err)
			assert.Empty(t, report.Conflicts)
			assert.Zero(t, report.ConflictsFound)
			assert.Equal(t, analysisClean, report.Analysis)
			assert.Positive(t, llm.callCount())
		})
	}
}

func TestConflictService_SkipsThinTopics(t *testing.T) {
	index := newIndex(chunk("plans", "A-101.pdf", 1, 0, "Wall type W1 gypsum board."))
	llm := &mockLLM{reply: conflictFinding}
	svc := NewConflictService(NewRetriever(index, analysis.New(), nil), llm, newMockPrompts(), time.Second)

	report, err := svc.Detect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, llm.callCount())
	assert.Empty(t, report.Conflicts)
	assert.Equal(t, analysisClean, report.Analysis)
}

func TestConflictService_GenerationFailure(t *testing.T) {
	llm := &mockLLM{err: assert.AnError}
	_, err := newConflictService(llm).Detect(context.Background())
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}
