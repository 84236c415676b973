package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-curator/internal/types"
)

// SaveSelectionRun stores the record of one selection request.
func (db *DB) SaveSelectionRun(ctx context.Context, run *types.SelectionRun) error {
	id, err := uuid.Parse(run.RequestID)
	if err != nil {
		return fmt.Errorf("invalid request id %q: %w", run.RequestID, err)
	}

	attempts, err := json.Marshal(run.Attempts)
	if err != nil {
		return fmt.Errorf("failed to marshal attempts: %w", err)
	}
	bullets, err := json.Marshal(run.Bullets)
	if err != nil {
		return fmt.Errorf("failed to marshal bullets: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO selection_runs
		   (request_id, status, provider, attempt_count, tokens_used, job_title, reasoning, attempts, bullets, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, run.Status, run.Provider, run.AttemptCount, run.TokensUsed, run.JobTitle, run.Reasoning,
		attempts, bullets, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save selection run %s: %w", run.RequestID, err)
	}
	return nil
}

// GetSelectionRun retrieves a selection run by request id. It returns nil, nil when the run
// does not exist.
func (db *DB) GetSelectionRun(ctx context.Context, requestID string) (*types.SelectionRun, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request id %q: %w", requestID, err)
	}

	row := db.pool.QueryRow(ctx,
		`SELECT request_id, status, provider, attempt_count, tokens_used, job_title, reasoning,
		        attempts, bullets, created_at
		 FROM selection_runs WHERE request_id = $1`,
		id,
	)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get selection run %s: %w", requestID, err)
	}
	return run, nil
}

// ListSelectionRuns returns the most recent runs, newest first.
func (db *DB) ListSelectionRuns(ctx context.Context, limit int) ([]*types.SelectionRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT request_id, status, provider, attempt_count, tokens_used, job_title, reasoning,
		        attempts, bullets, created_at
		 FROM selection_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list selection runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*types.SelectionRun, error) {
		return scanRun(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list selection runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*types.SelectionRun, error) {
	var (
		run      types.SelectionRun
		id       uuid.UUID
		attempts []byte
		bullets  []byte
	)
	err := row.Scan(&id, &run.Status, &run.Provider, &run.AttemptCount, &run.TokensUsed,
		&run.JobTitle, &run.Reasoning, &attempts, &bullets, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.RequestID = id.String()

	if err := json.Unmarshal(attempts, &run.Attempts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempts: %w", err)
	}
	if err := json.Unmarshal(bullets, &run.Bullets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bullets: %w", err)
	}
	return &run, nil
}
