package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService extracts, chunks, embeds and indexes uploads.
// Document metadata and chunks are persisted in the document store and
// mirrored in the index store used for retrieval.
type IngestService struct {
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	docStore   driven.DocumentStore
	index      driven.IndexStore
	uploads    driven.UploadStore
	now        func() time.Time
}

// NewIngestService creates an ingest service. uploads may be nil, in
// which case raw files are not kept.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	docStore driven.DocumentStore,
	index driven.IndexStore,
	uploads driven.UploadStore,
) *IngestService {
	return &IngestService{
		extractors: extractors,
		pipeline:   pipeline,
		docStore:   docStore,
		index:      index,
		uploads:    uploads,
		now:        time.Now,
	}
}

// SetClock replaces the upload timestamp source. Used by tests.
func (s *IngestService) SetClock(now func() time.Time) {
	s.now = now
}

// Ingest processes one upload. Re-ingesting a filename replaces the
// document of the same ID.
func (s *IngestService) Ingest(ctx context.Context, upload domain.Upload) (*driving.IngestResult, error) {
	filename := filepath.Base(strings.TrimSpace(upload.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: missing filename", domain.ErrInvalidInput)
	}
	upload.Filename = filename

	logger.Section("Ingest " + filename)

	pages, err := s.extractors.Extract(ctx, &upload)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	logger.Debug("Extracted %d pages", len(pages))

	doc := domain.Document{
		ID:         domain.DocumentID(filename),
		Filename:   filename,
		UploadedAt: s.now(),
	}
	if s.uploads != nil {
		path, err := s.uploads.Save(ctx, &upload)
		if err != nil {
			return nil, fmt.Errorf("store upload %s: %w", filename, err)
		}
		doc.StoragePath = path
	}

	chunks, err := s.pipeline.Process(ctx, &domain.ExtractedDocument{Document: doc, Pages: pages})
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", filename, err)
	}
	doc.ChunkCount = len(chunks)

	if err := s.replace(ctx, &doc, chunks); err != nil {
		return nil, err
	}

	logger.Info("Indexed %s: %d chunks", filename, len(chunks))
	return &driving.IngestResult{
		Filename:   filename,
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
	}, nil
}

// replace stores the document and its chunks. When every previous chunk
// ID reappears, chunks are overwritten in place and keep their index
// positions. Otherwise the old document is removed first so no stale
// chunk survives.
func (s *IngestService) replace(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	previous, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load previous chunks: %w", err)
	}

	if !coveredBy(previous, chunks) {
		logger.Debug("Removing %d stale chunks of %s", len(previous), doc.Filename)
		if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("remove previous document: %w", err)
		}
		if err := s.index.DeleteDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("remove previous chunks from index: %w", err)
		}
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	for i := range chunks {
		if err := s.index.Add(ctx, &chunks[i]); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunks[i].ID, err)
		}
	}
	return nil
}

// coveredBy reports whether every chunk ID in old appears in updated.
func coveredBy(old, updated []domain.Chunk) bool {
	if len(old) == 0 {
		return true
	}
	ids := make(map[string]bool, len(updated))
	for i := range updated {
		ids[updated[i].ID] = true
	}
	for i := range old {
		if !ids[old[i].ID] {
			return false
		}
	}
	return true
}

// IngestBatch ingests uploads in order. Failures are reported per upload
// and never stop the batch unless the context is cancelled.
func (s *IngestService) IngestBatch(ctx context.Context, uploads []domain.Upload) []driving.IngestResult {
	results := make([]driving.IngestResult, 0, len(uploads))
	for _, upload := range uploads {
		if err := ctx.Err(); err != nil {
			results = append(results, driving.IngestResult{Filename: upload.Filename, Err: err})
			continue
		}
		res, err := s.Ingest(ctx, upload)
		if err != nil {
			if errors.Is(err, domain.ErrExtraction) || errors.Is(err, domain.ErrUnsupportedFormat) {
				logger.Warn("Skipping %s: %v", upload.Filename, err)
			} else {
				logger.Error("Failed to ingest %s: %v", upload.Filename, err)
			}
			results = append(results, driving.IngestResult{Filename: upload.Filename, Err: err})
			continue
		}
		results = append(results, *res)
	}
	return results
}

// Rehydrate loads every persisted chunk into the index store.
// Call once at startup before serving queries.
func (s *IngestService) Rehydrate(ctx context.Context) (int, error) {
	chunks, err := s.docStore.AllChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}
	for i := range chunks {
		if err := s.index.Add(ctx, &chunks[i]); err != nil {
			return i, fmt.Errorf("index chunk %s: %w", chunks[i].ID, err)
		}
	}
	logger.Debug("Rehydrated %d chunks", len(chunks))
	return len(chunks), nil
}

// SupportedExtensions lists the file extensions that can be ingested.
func (s *IngestService) SupportedExtensions() []string {
	return s.extractors.SupportedExtensions()
}
