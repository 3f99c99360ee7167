// Package postgres persists analysis runs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"goadmit/domain/core"
	"goadmit/ports"
)

// Schema creates the analysis_runs table.
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL,
	input      JSONB NOT NULL,
	output     JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at DESC);
`

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Connect opens a database handle and ensures the schema exists.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return db, nil
}

// Save inserts a run record.
func (r *runRepository) Save(ctx context.Context, run *core.AnalysisRun) error {
	query := `INSERT INTO analysis_runs (id, kind, status, input, output, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Kind, run.Status, []byte(run.Input), []byte(run.Output), run.Error, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get retrieves a run by its ID
func (r *runRepository) Get(ctx context.Context, id core.RunID) (*core.AnalysisRun, error) {
	query := `SELECT id, kind, status, input, COALESCE(output, 'null') AS output, error, created_at
		FROM analysis_runs WHERE id = $1`

	var run core.AnalysisRun
	err := r.db.GetContext(ctx, &run, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// List retrieves the most recent runs, newest first.
func (r *runRepository) List(ctx context.Context, limit int) ([]core.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, kind, status, input, COALESCE(output, 'null') AS output, error, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT $1`

	var runs []core.AnalysisRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
