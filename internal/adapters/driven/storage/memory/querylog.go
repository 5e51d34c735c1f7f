package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure QueryLog implements the interface.
var _ driven.QueryLog = (*QueryLog)(nil)

// QueryLog is an in-memory implementation of driven.QueryLog.
type QueryLog struct {
	mu      sync.RWMutex
	records []domain.QueryRecord
}

// NewQueryLog creates a new in-memory query log.
func NewQueryLog() *QueryLog {
	return &QueryLog{}
}

// Record appends one query.
func (l *QueryLog) Record(_ context.Context, rec domain.QueryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

// Records returns every logged query, oldest first.
func (l *QueryLog) Records(_ context.Context) ([]domain.QueryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.QueryRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}
