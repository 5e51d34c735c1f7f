package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure UploadStore implements the interface.
var _ driven.UploadStore = (*UploadStore)(nil)

// UploadStore keeps a raw copy of each ingested file in one directory.
// Files are named by their base name, so re-uploading the same file
// replaces the previous copy.
type UploadStore struct {
	dir string
}

// NewUploadStore creates an upload store rooted at dir.
// If dir is empty, defaults to ~/.planroom/uploads.
func NewUploadStore(dir string) (*UploadStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".planroom", "uploads")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Save writes the upload and returns its path. The write goes through a
// temporary file so a crash never leaves a truncated copy behind.
func (s *UploadStore) Save(ctx context.Context, upload *domain.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(upload.Filename)
	if name == "." || name == string(filepath.Separator) || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("upload filename %q: %w", upload.Filename, domain.ErrInvalidInput)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(upload.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}

// Delete removes a stored upload. Missing files are not an error.
func (s *UploadStore) Delete(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(s.dir) {
		return fmt.Errorf("path %q is outside the upload directory: %w", path, domain.ErrInvalidInput)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Dir returns the upload directory.
func (s *UploadStore) Dir() string {
	return s.dir
}
