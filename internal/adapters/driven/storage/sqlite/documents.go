package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

type documentStore struct {
	db *sql.DB
}

var _ driven.DocumentStore = (*documentStore)(nil)

const (
	documentColumns = `id, filename, storage_path, chunk_count, uploaded_at`
	chunkColumns    = `c.id, c.document_id, c.filename, c.page_number, c.chunk_index, c.content, c.terms, c.embedding`
)

func scanDocument(sc scanner) (domain.Document, error) {
	var d domain.Document
	err := sc.Scan(&d.ID, &d.Filename, &d.StoragePath, &d.ChunkCount, &d.UploadedAt)
	return d, err
}

func scanChunk(sc scanner) (domain.Chunk, error) {
	var (
		c     domain.Chunk
		terms string
		blob  []byte
	)
	if err := sc.Scan(&c.ID, &c.DocumentID, &c.Filename, &c.PageNumber, &c.ChunkIndex, &c.Content, &terms, &blob); err != nil {
		return c, err
	}
	if err := fromJSONText(terms, &c.Terms); err != nil {
		return c, fmt.Errorf("chunk %s terms: %w", c.ID, err)
	}
	c.Embedding = decodeVector(blob)
	return c, nil
}

// SaveDocument upserts by id. The rowid survives an update so chunk
// replay order does not change when a file is re-ingested.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			storage_path = excluded.storage_path,
			chunk_count = excluded.chunk_count,
			uploaded_at = excluded.uploaded_at`,
		doc.ID, doc.Filename, doc.StoragePath, doc.ChunkCount, doc.UploadedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.ID, err)
	}
	return nil
}

// SaveChunks swaps out the chunk set of each document named in chunks in
// one transaction. Parent rows must exist.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		cleared := map[string]bool{}
		for i := range chunks {
			id := chunks[i].DocumentID
			if cleared[id] {
				continue
			}
			cleared[id] = true
			if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, id); err != nil {
				return fmt.Errorf("clearing chunks of %s: %w", id, err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks
			(id, document_id, filename, page_number, chunk_index, content, terms, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing chunk insert: %w", err)
		}
		defer stmt.Close()

		for i := range chunks {
			c := &chunks[i]
			terms, err := jsonText(c.Terms)
			if err != nil {
				return fmt.Errorf("chunk %s terms: %w", c.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Filename, c.PageNumber,
				c.ChunkIndex, c.Content, terms, encodeVector(c.Embedding)); err != nil {
				return fmt.Errorf("saving chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("reading document %s: %w", id, err)
	}
	return &d, nil
}

func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return queryAll(ctx, s.db, "chunks", scanChunk, `SELECT `+chunkColumns+`
		FROM chunks c WHERE c.document_id = ?
		ORDER BY c.page_number, c.chunk_index`, documentID)
}

// AllChunks orders by document rowid, which is first-ingest order.
func (s *documentStore) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	return queryAll(ctx, s.db, "chunks", scanChunk, `SELECT `+chunkColumns+`
		FROM chunks c JOIN documents d ON d.id = c.document_id
		ORDER BY d.rowid, c.page_number, c.chunk_index`)
}

// DeleteDocument relies on ON DELETE CASCADE for the chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return queryAll(ctx, s.db, "documents", scanDocument,
		`SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC, rowid DESC`)
}
