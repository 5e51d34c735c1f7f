package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Flags(t *testing.T) {
	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "8000", port.DefValue)
	assert.Equal(t, "127.0.0.1", serveCmd.Flags().Lookup("host").DefValue)
}

func TestServeCmd_InvalidPort(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { servePort = 8000 }()

	_, err := execute(t, "serve", "--port", "70000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestServeCmd_RequiresQueryService(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query service is required")
}

func TestMCPServeCmd_RequiresQueryService(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "mcp", "serve")

	assert.Error(t, err)
}
