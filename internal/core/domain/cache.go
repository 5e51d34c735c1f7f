package domain

import (
	"crypto/md5" //nolint:gosec // Fingerprint only, not a security boundary.
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// DefaultCacheTTL is how long a cached answer stays fresh.
const DefaultCacheTTL = time.Hour

// CacheEntry is a memoised answer. Entries are immutable once stored.
type CacheEntry struct {
	// Fingerprint is the cache key derived from query and filters.
	Fingerprint string `json:"fingerprint"`

	// Answer is the generated answer text.
	Answer string `json:"answer"`

	// Sources are the citations returned with the answer.
	Sources []Source `json:"sources"`

	// Confidence is the grounding label of the answer.
	Confidence Confidence `json:"confidence"`

	// StructuredData holds records when the answer came from extraction.
	StructuredData any `json:"structured_data,omitempty"`

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time `json:"created_at"`
}

// IsFresh reports whether the entry is still valid at now.
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}

// CacheStats summarises the result cache.
type CacheStats struct {
	// EntryCount is the number of stored entries, stale ones included.
	EntryCount int `json:"total_entries"`

	// ValidCount is the number of entries that are still fresh.
	ValidCount int `json:"valid_entries"`

	// TTLSeconds is the configured freshness window.
	TTLSeconds int `json:"ttl_seconds"`
}

// Fingerprint returns the cache key for a query and its filters.
// Case and surrounding whitespace of the query do not affect the key.
func Fingerprint(query string, filters Filters) string {
	normalised := strings.ToLower(strings.TrimSpace(query))
	// Struct fields marshal in declaration order, which is sorted, and
	// omitempty drops unset filters.
	canonical, err := json.Marshal(filters)
	if err != nil {
		canonical = []byte("{}")
	}
	sum := md5.Sum([]byte(normalised + string(canonical))) //nolint:gosec // See import.
	return hex.EncodeToString(sum[:])
}
