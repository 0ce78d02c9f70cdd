package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/importer"
)

// Runs implements importer.RunStore on top of Postgres.
type Runs struct {
	db DBTX
}

// NewRuns creates an import audit store over the given connection.
func NewRuns(db DBTX) *Runs {
	return &Runs{db: db}
}

// Record inserts an audit entry for one completed import request.
func (s *Runs) Record(ctx context.Context, run importer.ImportRun) (*importer.ImportRun, error) {
	const q = `
		INSERT INTO import_runs (id, branch_id, actor_id, source, rows, succeeded, failed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, branch_id, actor_id, source, rows, succeeded, failed, created_at`

	var out importer.ImportRun
	err := s.db.QueryRow(ctx, q,
		uuid.NewString(), run.BranchID, run.ActorID, run.Source,
		run.Rows, run.Succeeded, run.Failed,
	).Scan(&out.ID, &out.BranchID, &out.ActorID, &out.Source,
		&out.Rows, &out.Succeeded, &out.Failed, &out.CreatedAt)
	if err != nil {
		return nil, apperr.FromDatabase(err, "record import run")
	}
	return &out, nil
}

// ListRecent returns the newest audit entries for a branch, newest first.
func (s *Runs) ListRecent(ctx context.Context, branchID string, limit int) ([]importer.ImportRun, error) {
	const q = `
		SELECT id, branch_id, actor_id, source, rows, succeeded, failed, created_at
		FROM import_runs
		WHERE branch_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, q, branchID, limit)
	if err != nil {
		return nil, apperr.FromDatabase(err, "list import runs")
	}
	defer rows.Close()

	var runs []importer.ImportRun
	for rows.Next() {
		var run importer.ImportRun
		if err := rows.Scan(&run.ID, &run.BranchID, &run.ActorID, &run.Source,
			&run.Rows, &run.Succeeded, &run.Failed, &run.CreatedAt); err != nil {
			return nil, apperr.FromDatabase(err, "scan import run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDatabase(err, "list import runs")
	}
	return runs, nil
}
