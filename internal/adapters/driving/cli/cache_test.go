package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStats(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "cache", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 5")
	assert.Contains(t, out, "Fresh:   4")
	assert.Contains(t, out, "TTL:     3600s")
}

func TestCacheClear(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "cache", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared.")
	assert.True(t, mocks.cache.cleared)
}

func TestCache_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	for _, sub := range []string{"stats", "clear"} {
		_, err := execute(t, "cache", sub)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache service not configured")
	}
}
