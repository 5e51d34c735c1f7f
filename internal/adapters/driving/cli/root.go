// Package cli implements the planroom command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
	ephemeral bool
)

// Services holds the driving ports the commands call.
type Services struct {
	Ingest     driving.IngestService
	Query      driving.QueryService
	Search     driving.SearchService
	Extraction driving.ExtractionService
	Document   driving.DocumentService
	Cache      driving.CacheService
	Analytics  driving.AnalyticsService
	Evaluation driving.EvaluationService
	Conflicts  driving.ConflictService
	Settings   driving.SettingsService
}

// BootstrapOptions carries the global flags that shape service assembly.
type BootstrapOptions struct {
	ConfigDir string
	Ephemeral bool
}

// Bootstrap builds services from the global flags. The returned close
// function is called once the command finishes.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*Services, func() error, error)

var (
	ingestService     driving.IngestService
	queryService      driving.QueryService
	searchService     driving.SearchService
	extractionService driving.ExtractionService
	documentService   driving.DocumentService
	cacheService      driving.CacheService
	analyticsService  driving.AnalyticsService
	evaluationService driving.EvaluationService
	conflictService   driving.ConflictService
	settingsService   driving.SettingsService

	bootstrap    Bootstrap
	closeService func() error
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "planroom/skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "planroom",
	Short: "Ask questions about construction documents",
	Long: `Planroom indexes drawings, specifications and schedules and answers
questions about them with page-level citations.

Documents are split into overlapping chunks and ranked with a blend of
keyword and vector relevance. Answers are cached until their TTL expires.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.planroom)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep documents, settings and the query log in memory only")
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	queryService = s.Query
	searchService = s.Search
	extractionService = s.Extraction
	documentService = s.Document
	cacheService = s.Cache
	analyticsService = s.Analytics
	evaluationService = s.Evaluation
	conflictService = s.Conflicts
	settingsService = s.Settings
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeService != nil {
		err = errors.Join(err, closeService())
		closeService = nil
	}
	return err
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || cmd.Annotations[skipBootstrap] != "" {
		return nil
	}

	s, closeFn, err := bootstrap(cmd.Context(), BootstrapOptions{ConfigDir: configDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	SetServices(s)
	closeService = closeFn
	return nil
}

// commandContext returns the command's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
