package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// CreateRun starts a new ingest run over root.
func (s *Store) CreateRun(ctx context.Context, root string) (*Run, error) {
	run := &Run{
		ID:        generateID(),
		Root:      root,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Root, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun records the final status and totals of a run.
func (s *Store) CompleteRun(ctx context.Context, id string, status RunStatus, counts RunCounts, errMsg string) error {
	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, executions = ?, rows_written = ?, skipped = ?, error = ?
		 WHERE id = ?`,
		string(status), formatTime(time.Now()), counts.Executions, counts.Rows, counts.Skipped, errVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: run %s", core.ErrNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root, status, started_at, completed_at, executions, rows_written, skipped, error
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, status, started_at, completed_at, executions, rows_written, skipped, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// RecordSkip notes an observation left out of a run.
func (s *Store) RecordSkip(ctx context.Context, runID, path, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skips (run_id, path, reason) VALUES (?, ?, ?)`, runID, path, reason)
	if err != nil {
		return fmt.Errorf("failed to record skip: %w", err)
	}
	return nil
}

// ListSkips returns the skips of a run ordered by path.
func (s *Store) ListSkips(ctx context.Context, runID string) ([]Skip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, reason FROM skips WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Skip
	for rows.Next() {
		var sk Skip
		if err := rows.Scan(&sk.RunID, &sk.Path, &sk.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan skip: %w", err)
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		startedAt   string
		completedAt sql.NullString
		errMsg      sql.NullString
	)
	if err := sc.Scan(&run.ID, &run.Root, &status, &startedAt, &completedAt,
		&run.Executions, &run.Rows, &run.Skipped, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)

	t, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completedAt.String, err)
		}
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return &run, nil
}
