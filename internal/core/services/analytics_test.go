package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

func TestAnalyticsService_Empty(t *testing.T) {
	s := NewAnalyticsService(memory.NewQueryLog())

	summary, err := s.Summary(context.Background())

	require.NoError(t, err)
	assert.Zero(t, summary.TotalQueries)
	assert.NotNil(t, summary.Recent)
	assert.NotNil(t, summary.Popular)
	assert.Empty(t, summary.DocumentUsage)
}

func TestAnalyticsService_Summary(t *testing.T) {
	log := memory.NewQueryLog()
	ctx := context.Background()
	record := func(q string, docs ...string) {
		require.NoError(t, log.Record(ctx, domain.QueryRecord{Query: q, Documents: docs, Timestamp: time.Now()}))
	}
	record("door rating", "spec.pdf")
	record("room areas", "plan.pdf")
	record("door rating", "spec.pdf", "plan.pdf")
	record("ceiling height")
	record("room areas", "plan.pdf")

	summary, err := NewAnalyticsService(log).Summary(ctx)

	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalQueries)
	assert.Len(t, summary.Recent, 5)
	assert.Equal(t, []domain.QueryCount{
		{Query: "door rating", Count: 2},
		{Query: "room areas", Count: 2},
		{Query: "ceiling height", Count: 1},
	}, summary.Popular)
	assert.Equal(t, map[string]int{"spec.pdf": 2, "plan.pdf": 3}, summary.DocumentUsage)
}

func TestAnalyticsService_Caps(t *testing.T) {
	log := memory.NewQueryLog()
	ctx := context.Background()
	for i := range 60 {
		require.NoError(t, log.Record(ctx, domain.QueryRecord{Query: fmt.Sprintf("q%d", i%12)}))
	}

	summary, err := NewAnalyticsService(log).Summary(ctx)

	require.NoError(t, err)
	assert.Equal(t, 60, summary.TotalQueries)
	require.Len(t, summary.Recent, 50)
	assert.Equal(t, "q10", summary.Recent[0].Query)
	assert.Len(t, summary.Popular, 10)
}
