package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/planroom/internal/analysis"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

func newExtractionService(llm *mockLLM, chunks ...domain.Chunk) *ExtractionService {
	retriever := NewRetriever(newIndex(chunks...), analysis.New(), nil)
	return NewExtractionService(retriever, llm, newMockPrompts(), 0)
}

func doorChunks() []domain.Chunk {
	return []domain.Chunk{
		chunk("spec", "spec.pdf", 4, 0, "Door schedule: D01 900 x 2100 FD60 timber"),
		chunk("spec", "spec.pdf", 5, 1, "Door hardware: closers on all fire doors"),
	}
}

func TestExtractionService_UnsupportedSchema(t *testing.T) {
	llm := &mockLLM{}
	s := newExtractionService(llm, doorChunks()...)

	_, err := s.Extract(context.Background(), "window_schedule")

	assert.ErrorIs(t, err, domain.ErrUnsupportedSchema)
	assert.Zero(t, llm.callCount())
}

func TestExtractionService_EmptyCorpus(t *testing.T) {
	llm := &mockLLM{reply: "[]"}
	s := newExtractionService(llm)

	result, err := s.Extract(context.Background(), "door_schedule")

	require.NoError(t, err)
	assert.Equal(t, domain.SchemaDoorSchedule, result.Schema)
	assert.Equal(t, []domain.DoorRecord{}, result.Data)
	assert.Zero(t, result.Count)
	assert.Empty(t, result.Sources)
	assert.Zero(t, llm.callCount(), "no context means no model call")
}

func TestExtractionService_StrictArray(t *testing.T) {
	llm := &mockLLM{reply: `[{"mark":"D01","width_mm":900,"height_mm":"2100mm","fire_rating":"FD60","material":null}]`}
	s := newExtractionService(llm, doorChunks()...)

	result, err := s.Extract(context.Background(), "door_schedule")

	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	doors, ok := result.Data.([]domain.DoorRecord)
	require.True(t, ok)
	assert.Equal(t, domain.Text("D01"), doors[0].Mark)
	assert.Equal(t, domain.NewNumber(900), doors[0].WidthMM)
	assert.Equal(t, domain.NewNumber(2100), doors[0].HeightMM)
	assert.Equal(t, "N/A", doors[0].Material.OrNA())
	assert.Len(t, result.Sources, 2)

	msgs := llm.lastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Return JSON only.", msgs[0].Content)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Extract doors from:"))
	assert.Contains(t, msgs[1].Content, "[spec.pdf, Page 4]")
	assert.True(t, llm.options[0].JSONMode)
	assert.Equal(t, 2000, llm.options[0].MaxTokens)
}

func TestExtractionService_BareScheduleRowFallsBackToNearest(t *testing.T) {
	ctx := context.Background()
	analyzer := analysis.New()
	embed := local.NewEmbeddingService(analyzer, local.DefaultDimensions)
	row := chunk("sched", "A-601 Door Schedule.pdf", 1, 0, "D-101, 900mm, 2100mm, 1 HR, Hollow Metal")
	vec, err := embed.Embed(ctx, row.Content)
	require.NoError(t, err)
	row.Embedding = vec

	retriever := NewRetriever(newIndex(row), analyzer, embed)
	for _, q := range domain.SchemaDoorSchedule.Queries() {
		matches, err := retriever.Retrieve(ctx, q, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, matches, "%q shares no term with the row", q)
	}

	llm := &mockLLM{reply: `[{"mark":"D-101","width_mm":900,"height_mm":2100,"fire_rating":"1 HR","material":"Hollow Metal"}]`}
	s := NewExtractionService(retriever, llm, newMockPrompts(), 0)

	result, err := s.Extract(ctx, "door_schedule")

	require.NoError(t, err)
	assert.Equal(t, 1, llm.callCount())
	assert.Contains(t, llm.lastMessages()[1].Content, "D-101, 900mm, 2100mm, 1 HR, Hollow Metal")
	require.Equal(t, 1, result.Count)
	doors := result.Data.([]domain.DoorRecord)
	assert.Equal(t, domain.Text("D-101"), doors[0].Mark)
	assert.Equal(t, domain.NewNumber(900), doors[0].WidthMM)
	assert.Equal(t, domain.NewNumber(2100), doors[0].HeightMM)
	assert.Equal(t, domain.Text("1 HR"), doors[0].FireRating)
	assert.Equal(t, domain.Text("Hollow Metal"), doors[0].Material)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "A-601 Door Schedule.pdf", result.Sources[0].Filename)
}

func TestExtractionService_WrappedObject(t *testing.T) {
	llm := &mockLLM{reply: `{"rooms":[{"name":"Lobby","area_sqm":"42.5 m2"},{"name":"Office"}]}`}
	s := newExtractionService(llm, chunk("p", "plan.pdf", 1, 0, "Room schedule: Lobby area 42.5 floor finish tile"))

	result, err := s.Extract(context.Background(), "room_summary")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	rooms := result.Data.([]domain.RoomRecord)
	assert.InDelta(t, 42.5, rooms[0].AreaSqm.Value, 1e-9)
	assert.False(t, rooms[1].AreaSqm.Valid)
}

func TestExtractionService_RecoversArrayFromProse(t *testing.T) {
	llm := &mockLLM{reply: "Here are the items:\n```json\n[{\"type\":\"AHU\",\"description\":\"Air handler\"}]\n```"}
	s := newExtractionService(llm, chunk("m", "mep.pdf", 2, 0, "Mechanical equipment: AHU-1 HVAC air handler"))

	result, err := s.Extract(context.Background(), "equipment_list")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, domain.Text("AHU"), result.Data.([]domain.EquipmentRecord)[0].Type)
}

func TestExtractionService_UnparseableReplyIsEmpty(t *testing.T) {
	llm := &mockLLM{reply: "I could not find any doors."}
	s := newExtractionService(llm, doorChunks()...)

	result, err := s.Extract(context.Background(), "door_schedule")

	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Equal(t, []domain.DoorRecord{}, result.Data)
	assert.NotEmpty(t, result.Sources)
}

func TestExtractionService_GenerationFailure(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}
	s := newExtractionService(llm, doorChunks()...)

	_, err := s.Extract(context.Background(), "door_schedule")

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestExtractionService_DeduplicatesContent(t *testing.T) {
	llm := &mockLLM{reply: "[]"}
	same := "Door schedule D02 fire rated"
	s := newExtractionService(llm,
		chunk("a", "a.pdf", 1, 0, same),
		chunk("b", "b.pdf", 1, 0, same),
	)

	_, err := s.Extract(context.Background(), "door_schedule")

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(llm.lastMessages()[1].Content, same))
}

func TestExtractionService_CapsSources(t *testing.T) {
	llm := &mockLLM{reply: "[]"}
	var chunks []domain.Chunk
	for i := range 30 {
		chunks = append(chunks, chunk("d", "d.pdf", i+1, i, fmt.Sprintf("door item %d", i)))
	}
	s := newExtractionService(llm, chunks...)

	result, err := s.Extract(context.Background(), "door_schedule")

	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Sources), 10)
	assert.LessOrEqual(t, strings.Count(llm.lastMessages()[1].Content, "[d.pdf, Page"), 15)
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		count   int
		wantErr bool
	}{
		{"bare array", `[{"mark":"A"}]`, 1, false},
		{"empty array", `[]`, 0, false},
		{"data key", `{"data":[{"mark":"A"},{"mark":"B"}]}`, 2, false},
		{"doors key", `{"doors":[{"mark":"A"}]}`, 1, false},
		{"unknown key", `{"entries":[{"mark":"A"}]}`, 0, true},
		{"scalar", `42`, 0, true},
		{"empty", ``, 0, true},
		{"prose", `sorry`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, count, err := parseStrict(domain.SchemaDoorSchedule, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestRecoverArray(t *testing.T) {
	_, count, err := recoverArray(domain.SchemaDoorSchedule, `{"entries":[{"mark":"A"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, _, err = recoverArray(domain.SchemaDoorSchedule, `no brackets here`)
	assert.ErrorIs(t, err, errNoArray)

	_, _, err = recoverArray(domain.SchemaDoorSchedule, `] backwards [`)
	assert.ErrorIs(t, err, errNoArray)
}
