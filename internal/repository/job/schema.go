package job

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jobdex/internal/db"
)

// schemaLockKey serializes bootstrap DDL across concurrent startups.
const schemaLockKey int64 = 2026101401

const schemaDDL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS %[1]s (
	id TEXT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	job_category TEXT,
	business_type TEXT,
	location TEXT,
	min_salary INTEGER CHECK (min_salary >= 0),
	embedding vector(%[2]d),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_job_category ON %[1]s(job_category);
CREATE INDEX IF NOT EXISTS idx_%[1]s_business_type ON %[1]s(business_type);
CREATE INDEX IF NOT EXISTS idx_%[1]s_min_salary ON %[1]s(min_salary);
CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_%[1]s_embedding ON %[1]s USING hnsw (embedding vector_cosine_ops);
`

// EnsureSchema creates the pgvector extension, the postings table and its indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpSchema, Err: fmt.Errorf("begin schema tx: %w", err)}
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return &db.Error{Op: db.OpSchema, Err: fmt.Errorf("acquire schema lock: %w", err)}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(schemaDDL, s.table, s.dimensions)); err != nil {
		return &db.Error{Op: db.OpSchema, Err: fmt.Errorf("execute schema ddl: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpSchema, Err: fmt.Errorf("commit schema tx: %w", err)}
	}
	return nil
}
