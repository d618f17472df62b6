package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talkessler/staffbridge/internal/importer"
)

// Directory is an immutable in-memory snapshot of the class tables.
// One snapshot serves a whole batch, so preview and commit see the same
// symbol mappings.
type Directory struct {
	bySymbol map[string]int64
	byWorker map[int64][]string
}

// Resolve maps a unique class symbol to its class id.
func (d *Directory) Resolve(symbol string) (int64, bool) {
	id, ok := d.bySymbol[symbol]
	return id, ok
}

// SymbolsForWorker returns the symbols of the classes currently
// assigning the worker.
func (d *Directory) SymbolsForWorker(workerID int64) []string {
	return d.byWorker[workerID]
}

// DirectoryLoader implements importer.DirectoryLoader against
// PostgreSQL.
type DirectoryLoader struct {
	pool *pgxpool.Pool
}

// NewDirectoryLoader returns the loader.
func NewDirectoryLoader(pool *pgxpool.Pool) *DirectoryLoader {
	return &DirectoryLoader{pool: pool}
}

// Load reads the classes and current worker assignments into a
// snapshot.
func (l *DirectoryLoader) Load(ctx context.Context) (importer.ClassDirectory, error) {
	dir := &Directory{
		bySymbol: make(map[string]int64),
		byWorker: make(map[int64][]string),
	}

	rows, err := l.pool.Query(ctx, `SELECT id, unique_symbol FROM classes`)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id     int64
			symbol string
		)
		if err := rows.Scan(&id, &symbol); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		dir.bySymbol[symbol] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	rows.Close()

	rows, err = l.pool.Query(ctx, `
		SELECT cw.worker_id, c.unique_symbol
		FROM class_workers cw
		JOIN classes c ON c.id = cw.class_id`)
	if err != nil {
		return nil, fmt.Errorf("load class memberships: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			workerID int64
			symbol   string
		)
		if err := rows.Scan(&workerID, &symbol); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		dir.byWorker[workerID] = append(dir.byWorker[workerID], symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load class memberships: %w", err)
	}

	return dir, nil
}
