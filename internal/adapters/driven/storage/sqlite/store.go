package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// DBFile is the database filename inside the data directory.
const DBFile = "planroom.db"

const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Store owns the database handle. The port implementations it hands out
// share it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens dir/planroom.db, creating it and applying pending
// migrations. An empty dir means ~/.planroom/data.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".planroom", "data")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	steps, err := loadMigrations(migrations.FS)
	if err == nil {
		err = applyMigrations(db, steps)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// DocumentStore returns the document and chunk tables as a port.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{db: s.db}
}

// QueryLog returns the query_log table as a port.
func (s *Store) QueryLog() driven.QueryLog {
	return &queryLog{db: s.db}
}

// SchemaVersion returns the newest applied migration.
func (s *Store) SchemaVersion() (int, error) {
	return currentVersion(s.db)
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
