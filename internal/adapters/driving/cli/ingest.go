package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/watcher"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index documents",
	Long: `Extracts text from files, splits it into chunks and indexes them.

Directories are walked recursively and only supported file types are read.
Re-ingesting a file with the same name replaces the earlier copy.

With --watch, planroom keeps running and re-indexes files as they are
created or modified. Deleted files are removed from the index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching directories for changes")
	rootCmd.AddCommand(ingestCmd)
}

// extensionLister is implemented by ingest services that know which
// file types they accept.
type extensionLister interface {
	SupportedExtensions() []string
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := commandContext(cmd)
	accept := supportedFilter()

	files, err := collectFiles(args, accept)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		cmd.Println("No supported files found.")
	} else if err := ingestFiles(ctx, cmd, files); err != nil {
		return err
	}

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, cmd, args, accept)
}

// supportedFilter reports whether a path has an ingestible extension.
func supportedFilter() func(string) bool {
	lister, ok := ingestService.(extensionLister)
	if !ok {
		return func(string) bool { return true }
	}
	exts := lister.SupportedExtensions()
	return func(path string) bool {
		return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
	}
}

// collectFiles expands directories into the supported files below them.
// Explicit file arguments are kept even when their type is unknown, so
// the user sees why they were rejected.
func collectFiles(paths []string, accept func(string) bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") && path != p {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && accept(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return files, nil
}

func readUploads(files []string) ([]domain.Upload, error) {
	uploads := make([]domain.Upload, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		uploads = append(uploads, domain.Upload{Filename: filepath.Base(f), Content: content})
	}
	return uploads, nil
}

func ingestFiles(ctx context.Context, cmd *cobra.Command, files []string) error {
	uploads, err := readUploads(files)
	if err != nil {
		return err
	}

	results := ingestService.IngestBatch(ctx, uploads)

	var failed, chunks int
	for _, r := range results {
		if r.Err != nil {
			failed++
			cmd.Printf("  FAIL %s: %v\n", r.Filename, r.Err)
			continue
		}
		chunks += r.ChunkCount
		cmd.Printf("  OK   %s (%d chunks)\n", r.Filename, r.ChunkCount)
	}

	cmd.Printf("\nIndexed %d of %d files, %d chunks.\n", len(results)-failed, len(results), chunks)
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed == len(results) {
		return errors.New("no files were indexed")
	}
	return nil
}

func watchAndIngest(ctx context.Context, cmd *cobra.Command, paths []string, accept func(string) bool) error {
	w, err := watcher.New(watcher.WithFilter(accept))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	for _, p := range paths {
		dir := p
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			dir = filepath.Dir(p)
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	for change := range w.Watch(ctx) {
		applyChange(ctx, cmd, change)
	}
	return nil
}

func applyChange(ctx context.Context, cmd *cobra.Command, change watcher.Change) {
	name := filepath.Base(change.Path)

	if change.Type == watcher.Removed {
		if documentService == nil {
			return
		}
		err := documentService.Delete(ctx, domain.DocumentID(name))
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			cmd.Printf("  FAIL remove %s: %v\n", name, err)
		default:
			cmd.Printf("  DEL  %s\n", name)
		}
		return
	}

	content, err := os.ReadFile(change.Path)
	if err != nil {
		cmd.Printf("  FAIL %s: %v\n", name, err)
		return
	}
	res, err := ingestService.Ingest(ctx, domain.Upload{Filename: name, Content: content})
	if err != nil {
		cmd.Printf("  FAIL %s: %v\n", name, err)
		return
	}
	label := "UPD"
	if change.Type == watcher.Created {
		label = "NEW"
	}
	cmd.Printf("  %-4s %s (%d chunks)\n", label, name, res.ChunkCount)
}
