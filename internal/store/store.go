// Package store provides the PostgreSQL persistence layer behind the
// import pipeline's collaborator interfaces: the worker store, the
// class directory snapshot, the assignment writer and the import
// history.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied idempotently at startup.
const schema = `
CREATE TABLE IF NOT EXISTS workers (
    id            BIGSERIAL PRIMARY KEY,
    national_id   TEXT NOT NULL UNIQUE,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    phone         TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL DEFAULT '',
    role_name     TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT '',
    is_101        BOOLEAN NOT NULL DEFAULT FALSE,
    start_date    DATE,
    end_date      DATE,
    project_codes INTEGER[] NOT NULL DEFAULT '{}',
    version       BIGINT NOT NULL DEFAULT 1,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS classes (
    id            BIGSERIAL PRIMARY KEY,
    unique_symbol TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS class_workers (
    class_id   BIGINT NOT NULL REFERENCES classes(id),
    worker_id  BIGINT NOT NULL REFERENCES workers(id),
    role_name  TEXT NOT NULL DEFAULT '',
    project    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (class_id, worker_id, project)
);

CREATE TABLE IF NOT EXISTS import_history (
    id            BIGSERIAL PRIMARY KEY,
    batch_id      TEXT NOT NULL,
    file_name     TEXT NOT NULL DEFAULT '',
    total_rows    INTEGER NOT NULL DEFAULT 0,
    created_count INTEGER NOT NULL DEFAULT 0,
    updated_count INTEGER NOT NULL DEFAULT 0,
    failed_count  INTEGER NOT NULL DEFAULT 0,
    duration_ms   BIGINT NOT NULL DEFAULT 0,
    committed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
