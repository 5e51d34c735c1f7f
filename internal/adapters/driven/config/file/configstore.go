package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists settings to config.toml. Values live in an embedded
// memory store keyed by dotted path, so [retrieval] top_k = 5 reads back as
// "retrieval.top_k". Every Set rewrites the file.
type ConfigStore struct {
	*memory.ConfigStore

	// writeMu orders file rewrites. Reads go to the memory store.
	writeMu  sync.Mutex
	filePath string
}

// NewConfigStore opens dir/config.toml, creating dir if needed.
// An empty dir means ~/.planroom. A missing file starts empty.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".planroom")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		ConfigStore: memory.NewConfigStore(),
		filePath:    filepath.Join(dir, "config.toml"),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set changes key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	if err := s.ConfigStore.Set(key, value); err != nil {
		return err
	}
	return s.Save()
}

// Save writes every key, grouped into TOML tables by section. The file is
// replaced atomically and is readable by the owner only.
func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := toml.Marshal(nestMap(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.filePath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load rereads the file, discarding unsaved values.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var tables map[string]any
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.Replace(flattenMap(tables, ""))
	return nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenMap turns nested tables into dotted keys: {"a": {"b": 1}} gives {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(table, key) {
				out[k] = v
			}
			continue
		}
		out[key] = value
	}
	return out
}

// nestMap is the inverse of flattenMap.
func nestMap(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}
