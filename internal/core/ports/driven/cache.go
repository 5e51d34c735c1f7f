package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// ResultCache memoises answers keyed by query fingerprint.
// Freshness is decided at read time: an expired entry is a miss but
// stays stored until Clear.
type ResultCache interface {
	// Get returns a fresh entry. The boolean is false on a miss.
	Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, bool, error)

	// Put stores an entry, overwriting any previous one.
	Put(ctx context.Context, entry *domain.CacheEntry) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Stats reports stored and fresh entry counts.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// TTL returns the freshness window.
	TTL() time.Duration
}

// Clock returns the current time. Injected so tests control freshness.
type Clock func() time.Time
