// Package pdf extracts PDF text with the pdftotext command from poppler.
// pdftotext ends every page with a form feed, which keeps page numbers
// for citations.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with an injected runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext on this platform.
func InstallInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install pdftotext with: brew install poppler"
	case "windows":
		return "Install pdftotext from https://github.com/oschwartz10612/poppler-windows and add it to PATH"
	default:
		return "Install pdftotext with: apt install poppler-utils (or your distribution's poppler package)"
	}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract writes the upload to a temporary file and converts it.
// A scanned PDF with no text layer yields no pages, not an error.
func (e *Extractor) Extract(ctx context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}

	tmp, err := os.CreateTemp("", "planroom-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup

	if _, err := tmp.Write(upload.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := e.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: pdftotext failed on %s: %w", domain.ErrExtraction, upload.Filename, err)
	}

	return domain.SplitPages(string(out)), nil
}
