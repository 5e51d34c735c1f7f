package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "analytics")

	require.NoError(t, err)
	assert.Contains(t, out, "Total queries: 3")
	assert.Contains(t, out, "slab thickness")
	// Most cited document first.
	assert.Less(t, strings.Index(out, "S-201.pdf"), strings.Index(out, "A-101.pdf"))
}

func TestAnalyticsCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { analyticsJSON = false }()

	out, err := execute(t, "analytics", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"total_queries": 3`)
	assert.Contains(t, out, `"document_usage"`)
}

func TestAnalyticsCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "analytics")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics service not configured")
}
