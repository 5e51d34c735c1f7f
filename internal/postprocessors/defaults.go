package postprocessors

import (
	"fmt"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/postprocessors/chunker"
	"github.com/custodia-labs/planroom/internal/postprocessors/embedder"
	"github.com/custodia-labs/planroom/internal/postprocessors/terms"
)

// Dependencies are the services built-in processors need.
// Embedding may be nil, in which case chunks carry no vectors.
type Dependencies struct {
	Analyzer  driven.Analyzer
	Embedding driven.EmbeddingService
}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry, deps Dependencies) {
	r.Register("chunker", buildChunker)
	r.Register("terms", func(_ map[string]any) (driven.PostProcessor, error) {
		if deps.Analyzer == nil {
			return nil, fmt.Errorf("terms processor: analyzer not configured")
		}
		return terms.New(deps.Analyzer), nil
	})
	r.Register("embedder", func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildEmbedder(deps.Embedding, cfg), nil
	})
}

// BuildPipeline constructs the pipeline described by cfg.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		p.Add(proc)
	}
	return p, nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
	}

	return chunker.New(opts...), nil
}

// buildEmbedder creates an embedder processor from generic config.
// Supported config keys:
//   - rate_per_second (float): Request rate limit (default: unlimited)
//   - timeout (duration or seconds): Per-request deadline (default: 30s)
//   - batch_size (int): Chunks per request (default: 32)
func buildEmbedder(service driven.EmbeddingService, cfg map[string]any) driven.PostProcessor {
	var opts []embedder.Option

	if cfg != nil {
		if r := getFloatFromConfig(cfg, "rate_per_second"); r > 0 {
			opts = append(opts, embedder.WithRateLimit(r))
		}
		if size := getIntFromConfig(cfg, "batch_size"); size > 0 {
			opts = append(opts, embedder.WithBatchSize(size))
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			opts = append(opts, embedder.WithTimeout(v))
		default:
			if secs := getIntFromConfig(cfg, "timeout"); secs > 0 {
				opts = append(opts, embedder.WithTimeout(time.Duration(secs)*time.Second))
			}
		}
	}

	return embedder.New(service, opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig is getIntFromConfig for fractional values.
func getFloatFromConfig(cfg map[string]any, key string) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
