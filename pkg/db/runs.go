package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/pickpocket/models"
)

// ImportRun represents one import attempt
type ImportRun struct {
	RunID       int64
	Source      string
	Backend     string
	Mode        string
	IncludeRead bool
	Total       int
	Added       int
	Failed      int
	StartedAt   time.Time
	FinishedAt  sql.NullTime // NULL while running or when abandoned
}

// Ledger returns the run's counts
func (r ImportRun) Ledger() models.ImportLedger {
	return models.ImportLedger{Added: r.Added, Failed: r.Failed}
}

// Finished reports whether completion was recorded
func (r ImportRun) Finished() bool {
	return r.FinishedAt.Valid
}

// RunResult is the outcome recorded for one record of a run
type RunResult struct {
	Index        int
	URL          string
	Section      string
	Status       string // "added" or "failed"
	ErrorMessage string
}

const (
	StatusAdded  = "added"
	StatusFailed = "failed"
)

// CreateImportRun inserts a new run and returns its id.
func (db *DB) CreateImportRun(ctx context.Context, run ImportRun) (int64, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO imports (source, backend, mode, include_read, total, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.Source, run.Backend, run.Mode, run.IncludeRead, run.Total, run.StartedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create import run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import run ID: %w", err)
	}
	return runID, nil
}

// UpdateImportProgress stores intermediate counts so an abandoned run stays inspectable.
func (db *DB) UpdateImportProgress(ctx context.Context, runID int64, ledger models.ImportLedger) error {
	_, err := db.ExecContext(ctx, `
		UPDATE imports SET added = ?, failed = ? WHERE run_id = ?
	`, ledger.Added, ledger.Failed, runID)
	if err != nil {
		return fmt.Errorf("failed to update import progress: %w", err)
	}
	return nil
}

// FinishImportRun stores the final counts and the completion time.
func (db *DB) FinishImportRun(ctx context.Context, runID int64, ledger models.ImportLedger) error {
	_, err := db.ExecContext(ctx, `
		UPDATE imports SET added = ?, failed = ?, finished_at = ? WHERE run_id = ?
	`, ledger.Added, ledger.Failed, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	return nil
}

// InsertRunResult records the outcome of one record.
func (db *DB) InsertRunResult(ctx context.Context, runID int64, r RunResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO import_results (run_id, record_index, url, section, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, r.Index, r.URL, r.Section, r.Status, r.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

// GetImportRun retrieves a run by id.
func (db *DB) GetImportRun(ctx context.Context, runID int64) (*ImportRun, error) {
	row := db.QueryRowContext(ctx, `
		SELECT run_id, source, backend, mode, include_read, total, added, failed, started_at, finished_at
		FROM imports
		WHERE run_id = ?
	`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import run: %w", err)
	}
	return &run, nil
}

// ListImportRuns returns the most recent runs first.
func (db *DB) ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	query := `
		SELECT run_id, source, backend, mode, include_read, total, added, failed, started_at, finished_at
		FROM imports
		ORDER BY run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import runs: %w", err)
	}

	return runs, nil
}

// GetRunResults returns the per-record outcomes of a run in processing order.
func (db *DB) GetRunResults(ctx context.Context, runID int64) ([]RunResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT record_index, url, section, status, error_message
		FROM import_results
		WHERE run_id = ?
		ORDER BY result_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.Index, &r.URL, &r.Section, &r.Status, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run results: %w", err)
	}

	return results, nil
}

func scanRun(row rowScanner) (ImportRun, error) {
	var run ImportRun
	err := row.Scan(&run.RunID, &run.Source, &run.Backend, &run.Mode, &run.IncludeRead,
		&run.Total, &run.Added, &run.Failed, &run.StartedAt, &run.FinishedAt)
	return run, err
}
