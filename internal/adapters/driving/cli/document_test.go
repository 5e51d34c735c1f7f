package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(documentCmd.Commands()))
	for _, c := range documentCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "content", "delete", "open"}, names)
}

func TestDocumentSubcommands_RequireOneArg(t *testing.T) {
	for _, sub := range []string{"get", "content", "delete", "open"} {
		t.Run(sub, func(t *testing.T) {
			_, err := execute(t, "document", sub)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "accepts 1 arg(s)")
		})
	}
}

func TestDocumentList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "UPLOADED")
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "S-201.pdf")
	assert.Contains(t, out, "2026-02-10 08:30:00")
	assert.Contains(t, out, "1 documents, 14 chunks")
}

func TestDocumentList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.documents.docs = nil

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed.")
}

func TestDocumentGet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "S-201.pdf\n")
	assert.Contains(t, out, "id        doc-1")
	assert.Contains(t, out, "stored    /tmp/uploads/S-201.pdf")
}

func TestDocumentContent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "content", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "GENERAL NOTES")
	assert.Contains(t, out, "FOOTING SCHEDULE")
}

func TestDocumentDelete(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-1")
	assert.Equal(t, []string{"doc-1"}, mocks.documents.deleted)
}

func TestDocumentDelete_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "document", "delete", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, mocks.documents.deleted)
}

func TestDocumentOpen(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "open", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Opened document doc-1")
	assert.Equal(t, "doc-1", mocks.documents.opened)
}

func TestDocumentCommands_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	tests := [][]string{
		{"document", "list"},
		{"document", "get", "x"},
		{"document", "content", "x"},
		{"document", "delete", "x"},
		{"document", "open", "x"},
	}
	for _, args := range tests {
		_, err := execute(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "document service not configured")
	}
}

func TestDocumentList_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.documents.err = errMockFailure

	_, err := execute(t, "document", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list documents")
}

func resetDocumentFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		documentJSON = false
		documentPage = 0
	})
}

func TestDocumentList_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetDocumentFlags(t)

	out, err := execute(t, "document", "list", "--json")
	require.NoError(t, err)

	var rows []documentRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "S-201.pdf", rows[0].Filename)
	assert.Equal(t, 14, rows[0].ChunkCount)
}

func TestDocumentList_JSONEmptyIsArray(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetDocumentFlags(t)
	mocks.documents.docs = nil

	out, err := execute(t, "document", "list", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestDocumentGet_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetDocumentFlags(t)

	out, err := execute(t, "document", "get", "doc-1", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"storage_path": "/tmp/uploads/S-201.pdf"`)
}

func TestDocumentContent_Page(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetDocumentFlags(t)

	out, err := execute(t, "document", "content", "doc-1", "--page", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "FOOTING SCHEDULE")
	assert.NotContains(t, out, "GENERAL NOTES")
}

func TestDocumentContent_PageOutOfRange(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	resetDocumentFlags(t)

	_, err := execute(t, "document", "content", "doc-1", "-p", "3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3 out of range: document has 2 pages")
}

func TestDocumentCmd_Alias(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "docs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "S-201.pdf")
}
