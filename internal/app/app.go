// Package app wires driven adapters and core services into a runnable
// planroom instance.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/planroom/internal/adapters/driven/ai"
	"github.com/custodia-labs/planroom/internal/adapters/driven/config/file"
	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/planroom/internal/analysis"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/services"
	"github.com/custodia-labs/planroom/internal/extractors"
	"github.com/custodia-labs/planroom/internal/logger"
	"github.com/custodia-labs/planroom/internal/postprocessors"
)

// Options control how the application is assembled.
type Options struct {
	// ConfigDir holds config.toml, prompts, uploads and data.
	// Empty means ~/.planroom.
	ConfigDir string

	// Ephemeral keeps settings, documents and the query log in memory
	// instead of config.toml and SQLite. Uploaded files are not kept.
	Ephemeral bool

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// App holds the assembled services.
type App struct {
	ConfigDir string
	Settings  *domain.AppSettings
	Warnings  []string

	Ingest     *services.IngestService
	Query      *services.QueryService
	Search     *services.SearchService
	Extraction *services.ExtractionService
	Documents  *services.DocumentService
	Cache      *services.CacheService
	Analytics  *services.AnalyticsService
	Evaluation *services.EvaluationService
	Conflicts  *services.ConflictService
	Config     *services.SettingsService

	closers []func() error
}

// New loads configuration, connects adapters and rehydrates the index
// from persisted chunks.
func New(ctx context.Context, opts Options) (*App, error) {
	dir, err := resolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	loadDotEnv(dir)

	a := &App{ConfigDir: dir}

	configStore, err := openConfigStore(dir, opts.Ephemeral)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.New()
	a.Config = services.NewSettingsService(configStore, ai.NewConfigValidator(analyzer))

	settings, err := a.Config.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	services.ApplyEnvKeys(settings, getenv)
	if err := services.ValidateSettings(settings); err != nil {
		logger.Warn("Invalid settings, using defaults: %v", err)
		defaults := a.Config.GetDefaults()
		settings = &defaults
		services.ApplyEnvKeys(settings, getenv)
	}
	a.Settings = settings

	aiResult := ai.Init(settings, analyzer)
	a.Warnings = aiResult.Warnings
	a.closers = append(a.closers, func() error { aiResult.Close(); return nil })

	retrieval := settings.Retrieval
	if aiResult.FellBack {
		retrieval.VectorWeight = 0
	}

	docStore, queryLog, uploads, err := a.openStores(dir, opts.Ephemeral)
	if err != nil {
		a.Close()
		return nil, err
	}

	cache, err := a.openCache(ctx, &settings.Cache)
	if err != nil {
		a.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	registry := extractors.NewRegistry()
	extractors.RegisterDefaults(registry)

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors, postprocessors.Dependencies{
		Analyzer:  analyzer,
		Embedding: aiResult.EmbeddingService,
	})
	pipeline, err := postprocessors.BuildPipeline(processors, domain.PipelineConfigFor(retrieval))
	if err != nil {
		a.Close()
		return nil, err
	}

	index := memory.NewIndexStore()
	retriever := services.NewRetriever(index, analyzer, aiResult.EmbeddingService,
		services.WithWeights(retrieval.LexicalWeight, retrieval.VectorWeight),
		services.WithTopK(retrieval.TopK),
		services.WithEmbedTimeout(retrieval.EmbedTimeout),
	)

	a.Ingest = services.NewIngestService(registry, pipeline, docStore, index, uploads)
	a.Search = services.NewSearchService(retriever)
	a.Extraction = services.NewExtractionService(retriever, aiResult.LLMService, prompts, settings.LLM.Timeout)
	a.Query = services.NewQueryService(retriever, aiResult.LLMService, prompts, cache, memory.NewConversationStore(),
		services.WithExtraction(a.Extraction),
		services.WithQueryLog(queryLog),
		services.WithHistoryTurns(settings.Conversation.HistoryTurns),
		services.WithLLMTimeout(settings.LLM.Timeout),
	)
	a.Documents = services.NewDocumentService(docStore, index, uploads, cache)
	a.Cache = services.NewCacheService(cache)
	a.Analytics = services.NewAnalyticsService(queryLog)
	a.Evaluation = services.NewEvaluationService(a.Query, index)
	a.Conflicts = services.NewConflictService(retriever, aiResult.LLMService, prompts, settings.LLM.Timeout)

	n, err := a.Ingest.Rehydrate(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("rehydrate index: %w", err)
	}
	logger.Debug("Index ready with %d chunks", n)

	return a, nil
}

// Close releases stores and AI clients. It is safe to call twice.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openConfigStore(dir string, ephemeral bool) (driven.ConfigStore, error) {
	if ephemeral {
		return memory.NewConfigStore(), nil
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return store, nil
}

func (a *App) openStores(dir string, ephemeral bool) (driven.DocumentStore, driven.QueryLog, driven.UploadStore, error) {
	if ephemeral {
		return memory.NewDocumentStore(), memory.NewQueryLog(), nil, nil
	}

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	uploads, err := file.NewUploadStore(filepath.Join(dir, "uploads"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open uploads: %w", err)
	}
	return store.DocumentStore(), store.QueryLog(), uploads, nil
}

// openCache connects the configured cache backend. An unreachable redis
// falls back to the in-process cache with a warning.
func (a *App) openCache(ctx context.Context, cfg *domain.CacheSettings) (driven.ResultCache, error) {
	if cfg.Backend != domain.CacheBackendRedis {
		return memory.NewResultCache(cfg.TTL), nil
	}

	rc, err := redis.NewResultCache(ctx, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := fmt.Sprintf("redis cache unavailable at %s, using in-memory cache: %v", cfg.RedisAddr, err)
		logger.Warn("%s", msg)
		a.Warnings = append(a.Warnings, msg)
		return memory.NewResultCache(cfg.TTL), nil
	}
	a.closers = append(a.closers, rc.Close)
	return rc, nil
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".planroom"), nil
}

// loadDotEnv loads .env from the working directory and the config
// directory. Variables already set in the environment win.
func loadDotEnv(dir string) {
	for _, path := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("Reading %s: %v", path, err)
		}
	}
}
