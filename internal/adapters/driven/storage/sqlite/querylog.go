package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

type queryLog struct {
	db *sql.DB
}

var _ driven.QueryLog = (*queryLog)(nil)

// Record appends one query. Document ids are stored as a JSON array.
func (l *queryLog) Record(ctx context.Context, rec domain.QueryRecord) error {
	docs, err := jsonText(rec.Documents)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, `
		INSERT INTO query_log (query, conversation_id, documents, cached, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Query, rec.ConversationID, docs, rec.Cached, rec.Timestamp.UTC()); err != nil {
		return fmt.Errorf("recording query: %w", err)
	}
	return nil
}

// Records returns the log oldest first.
func (l *queryLog) Records(ctx context.Context) ([]domain.QueryRecord, error) {
	return queryAll(ctx, l.db, "query log", func(sc scanner) (domain.QueryRecord, error) {
		var (
			rec  domain.QueryRecord
			docs string
		)
		if err := sc.Scan(&rec.Query, &rec.ConversationID, &docs, &rec.Cached, &rec.Timestamp); err != nil {
			return rec, err
		}
		return rec, fromJSONText(docs, &rec.Documents)
	}, `SELECT query, conversation_id, documents, cached, created_at FROM query_log ORDER BY id`)
}
