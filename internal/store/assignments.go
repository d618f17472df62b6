package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talkessler/staffbridge/internal/importer"
)

// Assignments implements importer.Assigner on PostgreSQL.
type Assignments struct {
	pool *pgxpool.Pool
}

// NewAssignments returns the assignment writer.
func NewAssignments(pool *pgxpool.Pool) *Assignments {
	return &Assignments{pool: pool}
}

// BulkAssign writes every tuple in one batched round trip. Re-assigning
// an existing (class, worker, project) tuple is a no-op.
func (a *Assignments) BulkAssign(ctx context.Context, byClass map[int64][]importer.Assignment) error {
	const q = `
		INSERT INTO class_workers (class_id, worker_id, role_name, project)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (class_id, worker_id, project) DO NOTHING`

	batch := &pgx.Batch{}
	for classID, tuples := range byClass {
		for _, t := range tuples {
			batch.Queue(q, classID, t.WorkerID, t.RoleName, t.Project)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := a.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("bulk assign: %w", err)
	}
	return nil
}
