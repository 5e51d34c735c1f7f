package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/analysis"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

type queryFixture struct {
	service       *QueryService
	llm           *mockLLM
	cache         *memory.ResultCache
	conversations *memory.ConversationStore
	log           *memory.QueryLog
}

func newQueryFixture(t *testing.T, llm driven.LLMService, opts ...QueryOption) *queryFixture {
	t.Helper()
	index := newIndex(
		chunk("spec", "spec.pdf", 2, 0, "Fire door rating is 60 minutes for stair cores."),
		chunk("spec", "spec.pdf", 3, 1, "Door hardware includes closers and panic bars."),
		chunk("plan", "plan.pdf", 1, 0, "Ground floor plan shows the lobby door."),
	)
	f := &queryFixture{
		cache:         memory.NewResultCache(time.Hour),
		conversations: memory.NewConversationStore(),
		log:           memory.NewQueryLog(),
	}
	if m, ok := llm.(*mockLLM); ok {
		f.llm = m
	}
	opts = append([]QueryOption{WithQueryLog(f.log), WithIDGenerator(func() string { return "conv-1" })}, opts...)
	f.service = NewQueryService(
		NewRetriever(index, analysis.New(), nil),
		llm,
		newMockPrompts(),
		f.cache,
		f.conversations,
		opts...,
	)
	return f
}

func (f *queryFixture) turns(t *testing.T, id string) []domain.Turn {
	t.Helper()
	turns, err := f.conversations.Window(context.Background(), id, 0)
	require.NoError(t, err)
	return turns
}

func TestQueryService_EmptyQuery(t *testing.T) {
	f := newQueryFixture(t, &mockLLM{reply: "x"})

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "  "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQueryService_MissThenHit(t *testing.T) {
	llm := &mockLLM{reply: "Stair core doors are rated 60 minutes."}
	f := newQueryFixture(t, llm)
	ctx := context.Background()

	first, err := f.service.Query(ctx, driving.QueryRequest{Text: "What is the fire door rating?"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Stair core doors are rated 60 minutes.", first.Answer)
	assert.Equal(t, "conv-1", first.ConversationID)
	require.NotEmpty(t, first.Sources)
	assert.Equal(t, "spec.pdf", first.Sources[0].Filename)
	assert.Equal(t, 2, first.Sources[0].Page)

	second, err := f.service.Query(ctx, driving.QueryRequest{
		Text:           "  WHAT is the fire door rating?  ",
		ConversationID: "conv-2",
	})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, first.Sources, second.Sources)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, "conv-2", second.ConversationID)
	assert.Equal(t, 1, llm.callCount())

	assert.Len(t, f.turns(t, "conv-2"), 2, "cache hits are still part of the conversation")

	records, err := f.log.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Cached)
	assert.True(t, records[1].Cached)
}

func TestQueryService_FiltersChangeFingerprint(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	f := newQueryFixture(t, llm)
	ctx := context.Background()

	_, err := f.service.Query(ctx, driving.QueryRequest{Text: "door"})
	require.NoError(t, err)
	answer, err := f.service.Query(ctx, driving.QueryRequest{Text: "door", Filters: domain.Filters{DocumentID: "plan"}})
	require.NoError(t, err)

	assert.False(t, answer.Cached)
	assert.Equal(t, 2, llm.callCount())
	for _, src := range answer.Sources {
		assert.Equal(t, "plan.pdf", src.Filename)
	}
}

func TestQueryService_PromptLayout(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	f := newQueryFixture(t, llm)

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "door hardware"})
	require.NoError(t, err)

	msgs := llm.lastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "[spec.pdf, Page 3]")
	assert.Contains(t, msgs[1].Content, "Question: door hardware")
	assert.Equal(t, 800, llm.options[0].MaxTokens)
	assert.InDelta(t, 0.3, llm.options[0].Temperature, 1e-9)
}

func TestQueryService_HistoryWindow(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	f := newQueryFixture(t, llm, WithHistoryTurns(2))
	ctx := context.Background()
	for i, content := range []string{"q1", "a1", "q2", "a2"} {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, f.conversations.Append(ctx, "c", domain.Turn{Role: role, Content: content}))
	}

	_, err := f.service.Query(ctx, driving.QueryRequest{Text: "door", ConversationID: "c"})
	require.NoError(t, err)

	msgs := llm.lastMessages()
	require.Len(t, msgs, 4)
	assert.Equal(t, driven.ChatMessage{Role: "user", Content: "q2"}, msgs[1])
	assert.Equal(t, driven.ChatMessage{Role: "assistant", Content: "a2"}, msgs[2])

	turns := f.turns(t, "c")
	require.Len(t, turns, 6)
	assert.Equal(t, "door", turns[4].Content)
	assert.Equal(t, "ok", turns[5].Content)
}

func TestQueryService_NoGrounding(t *testing.T) {
	llm := &mockLLM{reply: "should not be used"}
	f := newQueryFixture(t, llm)
	ctx := context.Background()

	answer, err := f.service.Query(ctx, driving.QueryRequest{Text: "xyzzy plugh", ConversationID: "c"})

	require.NoError(t, err)
	assert.Equal(t, NoGroundingAnswer, answer.Answer)
	assert.Equal(t, domain.ConfidenceNone, answer.Confidence)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, llm.callCount())

	stats, err := f.cache.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.EntryCount)
	assert.Empty(t, f.turns(t, "c"))

	records, err := f.log.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestQueryService_GenerationFailure(t *testing.T) {
	f := newQueryFixture(t, &mockLLM{err: errors.New("503")})

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "door"})

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	stats, _ := f.cache.Stats(context.Background())
	assert.Zero(t, stats.EntryCount)
}

func TestQueryService_NoLLMConfigured(t *testing.T) {
	f := newQueryFixture(t, nil)

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "door"})

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestQueryService_GenerationTimeout(t *testing.T) {
	f := newQueryFixture(t, &mockLLM{block: true}, WithLLMTimeout(10*time.Millisecond))

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "door"})

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

// cancellingLLM answers but cancels the caller's context first.
type cancellingLLM struct {
	mockLLM
	cancel context.CancelFunc
}

func (c *cancellingLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	c.cancel()
	return "late answer", nil
}

func TestQueryService_CancelledAfterGeneration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newQueryFixture(t, &cancellingLLM{cancel: cancel})

	_, err := f.service.Query(ctx, driving.QueryRequest{Text: "door", ConversationID: "c"})

	assert.ErrorIs(t, err, context.Canceled)
	stats, _ := f.cache.Stats(context.Background())
	assert.Zero(t, stats.EntryCount, "cancelled answers are not cached")
	assert.Empty(t, f.turns(t, "c"))
}

func TestQueryService_CacheFailureIsAMiss(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	index := newIndex(chunk("d", "a.pdf", 1, 0, "door"))
	s := NewQueryService(NewRetriever(index, analysis.New(), nil), llm, newMockPrompts(),
		failingCache{}, memory.NewConversationStore())

	answer, err := s.Query(context.Background(), driving.QueryRequest{Text: "door"})

	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Answer)
	assert.NotEmpty(t, answer.ConversationID)
}

func TestQueryService_Confidence(t *testing.T) {
	f := newQueryFixture(t, &mockLLM{reply: "ok"})

	answer, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "door"})

	require.NoError(t, err)
	// Lexical-only: the best match reaches the full lexical weight.
	assert.Equal(t, domain.ConfidenceHigh, answer.Confidence)
}

func TestQueryService_PromptPlaceholderMismatch(t *testing.T) {
	f := newQueryFixture(t, &mockLLM{reply: "ok"})
	prompts := newMockPrompts()
	prompts.templates[driven.PromptAnswerUser] = "Only context: %s"
	f.service.prompts = prompts

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "door"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type stubExtraction struct {
	result *domain.ExtractionResult
	err    error
	asked  []string
}

func (s *stubExtraction) Extract(_ context.Context, schema string) (*domain.ExtractionResult, error) {
	s.asked = append(s.asked, schema)
	return s.result, s.err
}

func TestQueryService_RoutesToExtraction(t *testing.T) {
	llm := &mockLLM{reply: "unused"}
	extraction := &stubExtraction{result: &domain.ExtractionResult{
		Schema: domain.SchemaDoorSchedule,
		Data: []domain.DoorRecord{
			{Mark: "D01", WidthMM: domain.NewNumber(900), HeightMM: domain.NewNumber(2100), FireRating: "FD60"},
		},
		Count:   1,
		Sources: []domain.Source{{Filename: "spec.pdf", Page: 2}},
	}}
	f := newQueryFixture(t, llm, WithExtraction(extraction))
	ctx := context.Background()

	answer, err := f.service.Query(ctx, driving.QueryRequest{Text: "Generate a door schedule please", ConversationID: "c"})

	require.NoError(t, err)
	assert.Equal(t, []string{"door_schedule"}, extraction.asked)
	assert.Contains(t, answer.Answer, "I found 1 doors")
	assert.Contains(t, answer.Answer, "D01: 900mm × 2100mm, Fire Rating: FD60, Material: N/A")
	assert.Equal(t, domain.ConfidenceHigh, answer.Confidence)
	assert.NotNil(t, answer.StructuredData)
	assert.False(t, answer.Cached)
	assert.Zero(t, llm.callCount())

	stats, _ := f.cache.Stats(ctx)
	assert.Zero(t, stats.EntryCount, "extraction answers are never cached")
	assert.Len(t, f.turns(t, "c"), 2)
}

func TestQueryService_ExtractionFailurePropagates(t *testing.T) {
	extraction := &stubExtraction{err: domain.ErrGenerationUnavailable}
	f := newQueryFixture(t, &mockLLM{}, WithExtraction(extraction))

	_, err := f.service.Query(context.Background(), driving.QueryRequest{Text: "list all rooms"})

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestRouteExtraction(t *testing.T) {
	tests := []struct {
		text   string
		schema domain.Schema
		ok     bool
	}{
		{"Generate a door schedule", domain.SchemaDoorSchedule, true},
		{"give me the ROOM SUMMARY", domain.SchemaRoomSummary, true},
		{"list all rooms on level 2", domain.SchemaRoomSummary, true},
		{"What MEP equipment is specified?", domain.SchemaEquipmentList, true},
		{"equipment list", domain.SchemaEquipmentList, true},
		{"what is the door rating", "", false},
		{"how big is room 101", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			schema, ok := routeExtraction(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.schema, schema)
		})
	}
}

func TestFormatExtraction(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := FormatExtraction(&domain.ExtractionResult{Schema: domain.SchemaEquipmentList, Data: []domain.EquipmentRecord{}})
		assert.Equal(t, "No equipment list data found in the documents.", out)
	})

	t.Run("rooms", func(t *testing.T) {
		out := FormatExtraction(&domain.ExtractionResult{
			Schema: domain.SchemaRoomSummary,
			Data:   []domain.RoomRecord{{Name: "Lobby", AreaSqm: domain.NewNumber(42.5)}},
			Count:  1,
		})
		assert.Contains(t, out, "I found 1 rooms in the documents:")
		assert.Contains(t, out, "• Lobby: Area: 42.5m², Finish: N/A")
	})

	t.Run("equipment", func(t *testing.T) {
		out := FormatExtraction(&domain.ExtractionResult{
			Schema: domain.SchemaEquipmentList,
			Data:   []domain.EquipmentRecord{{Type: "AHU", Description: "Air handling unit"}},
			Count:  1,
		})
		assert.Contains(t, out, "• AHU: Air handling unit")
	})

	t.Run("missing numbers", func(t *testing.T) {
		out := FormatExtraction(&domain.ExtractionResult{
			Schema: domain.SchemaDoorSchedule,
			Data:   []domain.DoorRecord{{}},
			Count:  1,
		})
		assert.Contains(t, out, "• N/A: N/Amm × N/Amm")
	})
}
