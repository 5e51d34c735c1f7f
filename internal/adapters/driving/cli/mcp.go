package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can query the
indexed drawings.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, for example to test with MCP Inspector.

Tools: query, search, extract_structured, list_documents, delete_document,
cache_stats, evaluate, detect_conflicts.

Examples:
  # Stdio mode (default)
  planroom mcp serve

  # HTTP mode
  planroom mcp serve --port 8080

Desktop client configuration:
  {
    "mcpServers": {
      "planroom": {
        "command": "/path/to/planroom",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:      queryService,
		Search:     searchService,
		Extraction: extractionService,
		Document:   documentService,
		Cache:      cacheService,
		Evaluation: evaluationService,
		Conflicts:  conflictService,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(commandContext(cmd), addr)
	}

	return server.Run(commandContext(cmd))
}
