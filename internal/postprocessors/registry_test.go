package postprocessors

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

func namedBuilder(cfg map[string]any) (driven.PostProcessor, error) {
	name, _ := cfg["name"].(string)
	return &stubStage{name: name}, nil
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("stub"))

	r.Register("stub", namedBuilder)
	stage, err := r.Build("stub", map[string]any{"name": "custom"})

	require.NoError(t, err)
	assert.True(t, r.Has("stub"))
	assert.Equal(t, "custom", stage.Name())
}

func TestRegistry_UnknownStage(t *testing.T) {
	_, err := NewRegistry().Build("ocr", nil)

	require.ErrorIs(t, err, ErrUnknownStage)
	assert.Contains(t, err.Error(), `"ocr"`)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	r.Register("terms", namedBuilder)
	r.Register("chunker", namedBuilder)
	r.Register("embedder", namedBuilder)

	assert.Equal(t, []string{"chunker", "embedder", "terms"}, r.Names())
}

func defaultRegistry(deps Dependencies) *Registry {
	r := NewRegistry()
	RegisterDefaults(r, deps)
	return r
}

func TestRegisterDefaults(t *testing.T) {
	r := defaultRegistry(Dependencies{Analyzer: analysis.New()})

	assert.Equal(t, []string{"chunker", "embedder", "terms"}, r.Names())

	for _, cfg := range []map[string]any{nil, {"chunk_size": 500, "overlap": 100}} {
		stage, err := r.Build("chunker", cfg)
		require.NoError(t, err)
		assert.Equal(t, "chunker", stage.Name())
	}
}

func TestRegisterDefaults_TermsNeedAnalyzer(t *testing.T) {
	_, err := defaultRegistry(Dependencies{}).Build("terms", nil)

	assert.Error(t, err)
}

func TestBuildPipeline_Defaults(t *testing.T) {
	r := defaultRegistry(Dependencies{Analyzer: analysis.New()})

	p, err := BuildPipeline(r, domain.PipelineConfigFor(domain.DefaultAppSettings().Retrieval))
	require.NoError(t, err)
	require.Equal(t, []string{"chunker", "terms", "embedder"}, p.Stages())

	doc := &domain.ExtractedDocument{
		Document: domain.Document{ID: "doc1", Filename: "a.txt"},
		Pages:    []domain.Page{{Number: 1, Text: "Fire rating: 1 HR for corridor partitions."}},
	}
	chunks, err := p.Process(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Terms["corridor"])
	assert.Nil(t, chunks[0].Embedding, "no vectors without an embedding service")
}

func TestBuildPipeline_UnknownStage(t *testing.T) {
	_, err := BuildPipeline(NewRegistry(), domain.PipelineConfig{Processors: []string{"stemmer"}})

	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestBuildEmbedder_AcceptsDurationOrSeconds(t *testing.T) {
	r := defaultRegistry(Dependencies{})

	for _, cfg := range []map[string]any{
		{"timeout": 5 * time.Second},
		{"timeout": 5, "rate_per_second": 2.5, "batch_size": 8},
		nil,
	} {
		stage, err := r.Build("embedder", cfg)
		require.NoError(t, err)
		assert.Equal(t, "embedder", stage.Name())
	}
}

func TestConfigNumbers(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantInt   int
		wantFloat float64
	}{
		{"int", 100, 100, 100},
		{"int64", int64(200), 200, 200},
		{"float64", 2.5, 2, 2.5},
		{"string", "400", 0, 0},
		{"missing", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := map[string]any{}
			if tt.value != nil {
				cfg["v"] = tt.value
			}
			assert.Equal(t, tt.wantInt, getIntFromConfig(cfg, "v"))
			assert.Equal(t, tt.wantFloat, getFloatFromConfig(cfg, "v"))
		})
	}
	assert.Zero(t, getIntFromConfig(nil, "v"))
}
