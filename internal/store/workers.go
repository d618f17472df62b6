package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talkessler/staffbridge/internal/importer"
)

// Workers implements importer.WorkerStore on PostgreSQL.
type Workers struct {
	pool *pgxpool.Pool
}

// NewWorkers returns the worker store.
func NewWorkers(pool *pgxpool.Pool) *Workers {
	return &Workers{pool: pool}
}

// FindByNationalID returns the stored worker or (nil, nil) when absent.
func (w *Workers) FindByNationalID(ctx context.Context, nationalID string) (*importer.ExistingWorker, error) {
	const q = `
		SELECT id, national_id, first_name, last_name, phone, email,
		       role_name, status, is_101, project_codes, version
		FROM workers
		WHERE national_id = $1`

	var (
		rec   importer.ExistingWorker
		codes []int32
	)
	err := w.pool.QueryRow(ctx, q, nationalID).Scan(
		&rec.ID, &rec.NationalID, &rec.FirstName, &rec.LastName,
		&rec.Phone, &rec.Email, &rec.RoleName, &rec.Status,
		&rec.Is101, &codes, &rec.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find worker %s: %w", nationalID, err)
	}
	rec.ProjectCodes = fromInt32s(codes)
	return &rec, nil
}

// BulkCreate inserts all workers in one batched round trip and returns
// the new ids aligned with the input order.
func (w *Workers) BulkCreate(ctx context.Context, workers []importer.NewWorker) ([]int64, error) {
	const q = `
		INSERT INTO workers (national_id, first_name, last_name, phone, email,
		                     role_name, status, is_101, start_date, end_date, project_codes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '{}')
		RETURNING id`

	batch := &pgx.Batch{}
	for _, nw := range workers {
		batch.Queue(q,
			nw.NationalID, nw.FirstName, nw.LastName, nw.Phone, nw.Email,
			nw.RoleName, nw.Status, nw.Is101,
			toDate(nw.StartDate), toDate(nw.EndDate),
		)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	ids := make([]int64, len(workers))
	for i := range workers {
		if err := results.QueryRow().Scan(&ids[i]); err != nil {
			return nil, fmt.Errorf("create worker %s: %w", workers[i].NationalID, err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("bulk create: %w", err)
	}
	return ids, nil
}

// Update persists the payload for one worker, guarded by the version
// token captured at classification time.
func (w *Workers) Update(ctx context.Context, workerID int64, payload importer.UpdatePayload) error {
	const q = `
		UPDATE workers
		SET project_codes = $1, phone = $2, role_name = $3,
		    version = version + 1, updated_at = now()
		WHERE id = $4 AND version = $5`

	tag, err := w.pool.Exec(ctx, q,
		toInt32s(payload.ProjectCodes), payload.Phone, payload.RoleName,
		workerID, payload.ExpectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update worker %d: %w", workerID, err)
	}
	if tag.RowsAffected() == 0 {
		return &importer.VersionConflictError{WorkerID: workerID}
	}
	return nil
}

// toDate maps the pipeline's zero-time "missing" convention to NULL.
func toDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func toInt32s(values []int) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v)
	}
	return out
}

func fromInt32s(values []int32) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
