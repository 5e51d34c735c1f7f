package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing query service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(requiredPorts())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingQueryService)
	})

	t.Run("missing search service", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSearchService)
	})

	t.Run("query and search is valid", func(t *testing.T) {
		assert.NoError(t, requiredPorts().Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := requiredPorts()
		ports.Extraction = &mockExtractionService{}
		ports.Document = &mockDocumentService{}
		ports.Cache = &mockCacheService{}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_AdvertisesToolsAndResources(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(requiredPorts())
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"query", "search", "extract_structured", "list_documents", "delete_document", "cache_stats",
		"evaluate", "detect_conflicts",
	}, names)

	resources, err := session.ListResources(ctx, nil)
	require.NoError(t, err)
	var uris []string
	for _, r := range resources.Resources {
		uris = append(uris, r.URI)
	}
	assert.ElementsMatch(t, []string{"planroom://documents", "planroom://health"}, uris)
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(requiredPorts())
	require.NoError(t, err)

	assert.NotNil(t, server.Handler())
}
