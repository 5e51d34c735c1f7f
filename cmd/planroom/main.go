// Command planroom answers questions about construction documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/planroom/internal/adapters/driving/cli"
	"github.com/custodia-labs/planroom/internal/app"
	"github.com/custodia-labs/planroom/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Services, func() error, error) {
	a, err := app.New(ctx, app.Options{ConfigDir: opts.ConfigDir, Ephemeral: opts.Ephemeral})
	if err != nil {
		return nil, nil, fmt.Errorf("starting planroom: %w", err)
	}

	return &cli.Services{
		Ingest:     a.Ingest,
		Query:      a.Query,
		Search:     a.Search,
		Extraction: a.Extraction,
		Document:   a.Documents,
		Cache:      a.Cache,
		Analytics:  a.Analytics,
		Evaluation: a.Evaluation,
		Conflicts:  a.Conflicts,
		Settings:   a.Config,
	}, a.Close, nil
}
