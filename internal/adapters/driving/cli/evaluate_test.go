package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "evaluate")

	require.NoError(t, err)
	assert.Contains(t, out, "Door widths?")
	assert.Contains(t, out, "partially_correct")
	assert.Contains(t, out, "2 queries over 40 chunks: 1 correct, 1 partial, 0 incorrect, 0 errors")
}

func TestEvaluateCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { evaluateJSON = false }()

	out, err := execute(t, "evaluate", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"total_queries": 2`)
	assert.Contains(t, out, `"expected_keywords"`)
}

func TestEvaluateCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "evaluate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation service not configured")
}
