package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/*.txt defaults/README.md
var defaultsFS embed.FS

const readmeName = "README.md"

// defaultPrompts maps prompt name to the built-in template.
var defaultPrompts = func() map[string]string {
	files, err := fs.Glob(defaultsFS, "defaults/*.txt")
	if err != nil {
		panic(err)
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		data, err := defaultsFS.ReadFile(f)
		if err != nil {
			panic(err)
		}
		out[strings.TrimSuffix(path.Base(f), ".txt")] = strings.TrimSpace(string(data))
	}
	return out
}()

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptStore serves prompt templates from <dir>/<name>.txt so users can
// reword them. The directory is seeded with the defaults on first Load and
// existing files are never overwritten. A missing or unreadable file falls
// back to the built-in template.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore does no I/O. An empty dir means ~/.planroom/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".planroom", "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(func() { s.seedErr = s.seedDir() })

	s.mu.RLock()
	p, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := s.read(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.seedErr))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = p
	return p, nil
}

// Reload forgets cached templates so the next Load reads disk again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir is where the templates live.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seedDir writes each default and the README unless a file is already there.
func (s *PromptStore) seedDir() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	files := map[string][]byte{}
	for name, p := range defaultPrompts {
		files[name+".txt"] = []byte(p + "\n")
	}
	readme, err := defaultsFS.ReadFile("defaults/" + readmeName)
	if err != nil {
		return err
	}
	files[readmeName] = readme

	var errs []error
	for base, data := range files {
		dst := filepath.Join(s.dir, base)
		if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			errs = append(errs, fmt.Errorf("seed %s: %w", base, err))
		}
	}
	return errors.Join(errs...)
}
