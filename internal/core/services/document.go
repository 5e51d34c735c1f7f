package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	docStore driven.DocumentStore
	index    driven.IndexStore
	uploads  driven.UploadStore
	cache    driven.ResultCache
	opener   func(path string) error
}

// NewDocumentService creates a new document service. uploads and cache
// may be nil.
func NewDocumentService(
	docStore driven.DocumentStore,
	index driven.IndexStore,
	uploads driven.UploadStore,
	cache driven.ResultCache,
) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		index:    index,
		uploads:  uploads,
		cache:    cache,
		opener:   openPath,
	}
}

// List returns all documents, most recently uploaded first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent returns the text of every chunk in page order. Page
// boundaries are marked with a blank line.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return "", err
	}
	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			if chunk.PageNumber != chunks[i-1].PageNumber {
				builder.WriteString("\n\n")
			} else {
				builder.WriteString("\n")
			}
		}
		builder.WriteString(chunk.Content)
	}
	return builder.String(), nil
}

// Delete removes a document, its chunks and its stored upload.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.index.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("remove chunks from index: %w", err)
	}
	if s.uploads != nil && doc.StoragePath != "" {
		if err := s.uploads.Delete(ctx, doc.StoragePath); err != nil {
			logger.Warn("Could not remove upload %s: %v", doc.StoragePath, err)
		}
	}
	logger.Info("Deleted %s (%d chunks)", doc.Filename, doc.ChunkCount)
	return nil
}

// Open opens the stored upload in the default application.
func (s *DocumentService) Open(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.StoragePath == "" {
		return fmt.Errorf("%w: no stored upload for %s", domain.ErrNotFound, doc.Filename)
	}
	return s.opener(doc.StoragePath)
}

// Health reports corpus size and cache occupancy.
func (s *DocumentService) Health(ctx context.Context) (*driving.Health, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	chunks, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	health := &driving.Health{
		Status:        "healthy",
		DocumentCount: len(docs),
		ChunkCount:    chunks,
	}
	if s.cache != nil {
		stats, err := s.cache.Stats(ctx)
		if err != nil {
			logger.Warn("Cache stats unavailable: %v", err)
			health.Status = "degraded"
		} else {
			health.CacheEntries = stats.EntryCount
		}
	}
	return health, nil
}

// openPath opens a file using the system default handler.
func openPath(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return errors.New("unsupported platform: " + runtime.GOOS)
	}

	return cmd.Start()
}
