package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/planroom/internal/logger"
)

// maxUploadBytes bounds a single upload request.
const maxUploadBytes = 64 << 20

// requestTimeout bounds one request end to end.
const requestTimeout = 2 * time.Minute

// Server serves the planroom HTTP API.
type Server struct {
	ports   *Ports
	version string
	router  chi.Router
}

// NewServer creates a server with its routes mounted.
func NewServer(ports *Ports, version string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports, version: version}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/list", s.handleListDocuments)
		r.Get("/{id}/content", s.handleDocumentContent)
		r.Delete("/{id}", s.handleDeleteDocument)
	})

	r.Post("/chat", s.handleChat)
	r.Post("/search", s.handleSearch)
	r.Post("/extract", s.handleExtract)
	r.Get("/analytics", s.handleAnalytics)
	r.Get("/evaluate", s.handleEvaluate)
	r.Get("/detect-conflicts", s.handleDetectConflicts)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/stats", s.handleCacheStats)
		r.Post("/clear", s.handleCacheClear)
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
