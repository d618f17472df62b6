package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talkessler/staffbridge/internal/importer"
)

// History implements importer.HistoryStore on PostgreSQL.
type History struct {
	pool *pgxpool.Pool
}

// NewHistory returns the history store.
func NewHistory(pool *pgxpool.Pool) *History {
	return &History{pool: pool}
}

// RecordCommit appends one committed batch.
func (h *History) RecordCommit(ctx context.Context, entry importer.HistoryEntry) error {
	const q = `
		INSERT INTO import_history
			(batch_id, file_name, total_rows, created_count, updated_count, failed_count, duration_ms, committed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := h.pool.Exec(ctx, q,
		entry.BatchID, entry.FileName, entry.TotalRows,
		entry.Created, entry.Updated, entry.Failed,
		entry.Duration.Milliseconds(), entry.CommittedAt,
	)
	if err != nil {
		return fmt.Errorf("record commit %s: %w", entry.BatchID, err)
	}
	return nil
}

// ListCommits returns the most recent commits, newest first.
func (h *History) ListCommits(ctx context.Context, limit int) ([]importer.HistoryEntry, error) {
	const q = `
		SELECT batch_id, file_name, total_rows, created_count, updated_count, failed_count, duration_ms, committed_at
		FROM import_history
		ORDER BY committed_at DESC
		LIMIT $1`

	rows, err := h.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()

	var entries []importer.HistoryEntry
	for rows.Next() {
		var (
			e          importer.HistoryEntry
			durationMs int64
		)
		if err := rows.Scan(&e.BatchID, &e.FileName, &e.TotalRows, &e.Created, &e.Updated, &e.Failed, &durationMs, &e.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	return entries, nil
}
