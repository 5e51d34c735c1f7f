package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/planroom/internal/adapters/driving/http"
	"github.com/custodia-labs/planroom/internal/core/services"
)

// portSearchRange is how far past --port serve looks when the port is taken.
const portSearchRange = 10

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Long: `Start an HTTP server exposing planroom as a JSON API.

Routes:
  GET    /                      service info
  GET    /health                document, chunk and cache counts
  POST   /documents/upload      multipart upload, field "file" (repeatable)
  GET    /documents/list        ingested documents
  GET    /documents/{id}/content extracted text split by page
  DELETE /documents/{id}        remove a document and its chunks
  POST   /chat                  {"message", "conversation_id", "filters"}
  POST   /search                {"query", "top_k", "filters"}
  POST   /extract               {"extraction_type"}
  GET    /analytics             query log summary
  GET    /evaluate              grade answers to a fixed question set
  GET    /detect-conflicts      flag inconsistencies between documents
  GET    /cache/stats           answer cache statistics
  POST   /cache/clear           drop every cached answer`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "interface to bind")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort <= 0 || servePort > 65535 {
		return fmt.Errorf("invalid port %d", servePort)
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingest:     ingestService,
		Query:      queryService,
		Search:     searchService,
		Extraction: extractionService,
		Document:   documentService,
		Cache:      cacheService,
		Analytics:  analyticsService,
		Evaluation: evaluationService,
		Conflicts:  conflictService,
	}, version)
	if err != nil {
		return err
	}

	port, err := services.FindAvailablePort(serveHost, servePort, min(servePort+portSearchRange, 65535))
	if err != nil {
		return err
	}
	if port != servePort {
		cmd.PrintErrf("port %d is in use, using %d\n", servePort, port)
	}

	addr := fmt.Sprintf("%s:%d", serveHost, port)
	cmd.PrintErrf("planroom API listening on http://%s\n", addr)
	return server.Run(commandContext(cmd), addr)
}
