package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jengzang/coolparks-go/internal/models"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, kind, status, phase, progress_percent, params_json, output_dir,
	result_summary, error_message, start_time, end_time, created_by, created_at, updated_at`

// RunRepository handles database operations for runs
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create creates a new run
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	now := time.Now().UTC()
	run.CreatedAt, run.UpdatedAt = now, now
	if run.Status == "" {
		run.Status = models.RunStatusPending
	}

	query := `
		INSERT INTO runs (
			kind, status, phase, progress_percent, params_json, output_dir,
			result_summary, error_message, start_time, end_time, created_by,
			created_at, updated_at
		) VALUES (
			:kind, :status, :phase, :progress_percent, :params_json, :output_dir,
			:result_summary, :error_message, :start_time, :end_time, :created_by,
			:created_at, :updated_at
		)
	`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// GetByID retrieves a run by ID
func (r *RunRepository) GetByID(ctx context.Context, id int64) (*models.Run, error) {
	run := &models.Run{}
	err := r.db.GetContext(ctx, run, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List retrieves runs, newest first, with optional filters
func (r *RunRepository) List(ctx context.Context, kind, status string, limit, offset int) ([]*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE 1=1"
	args := []interface{}{}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	runs := []*models.Run{}
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of runs matching the filters
func (r *RunRepository) Count(ctx context.Context, kind, status string) (int, error) {
	query := "SELECT COUNT(*) FROM runs WHERE 1=1"
	args := []interface{}{}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// SetOutputDir records where a run writes its outputs
func (r *RunRepository) SetOutputDir(ctx context.Context, id int64, dir string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE runs SET output_dir = ?, updated_at = ? WHERE id = ?", dir, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to set run output directory: %w", err)
	}
	return nil
}

// UpdateProgress records the current phase and overall progress of a run
func (r *RunRepository) UpdateProgress(ctx context.Context, id int64, phase string, percent int) error {
	query := `
		UPDATE runs
		SET phase = ?, progress_percent = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, phase, percent, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}
	return nil
}

// MarkAsRunning marks a run as running
func (r *RunRepository) MarkAsRunning(ctx context.Context, id int64) error {
	query := `
		UPDATE runs
		SET status = ?, start_time = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusRunning, now.Unix(), now, id); err != nil {
		return fmt.Errorf("failed to mark run as running: %w", err)
	}
	return nil
}

// MarkAsCompleted marks a run as completed with its result summary
func (r *RunRepository) MarkAsCompleted(ctx context.Context, id int64, summary string) error {
	query := `
		UPDATE runs
		SET status = ?, progress_percent = 100, result_summary = ?, end_time = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusCompleted, summary, now.Unix(), now, id); err != nil {
		return fmt.Errorf("failed to mark run as completed: %w", err)
	}
	return nil
}

// MarkAsFinished ends a run with a failed or cancelled status
func (r *RunRepository) MarkAsFinished(ctx context.Context, id int64, status, errorMsg string) error {
	query := `
		UPDATE runs
		SET status = ?, error_message = ?, end_time = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, status, errorMsg, now.Unix(), now, id); err != nil {
		return fmt.Errorf("failed to mark run as %s: %w", status, err)
	}
	return nil
}

// FailInterrupted marks runs left pending or running by a previous process
// as failed and returns how many were changed.
func (r *RunRepository) FailInterrupted(ctx context.Context) (int64, error) {
	query := `
		UPDATE runs
		SET status = ?, error_message = 'interrupted by server restart', updated_at = ?
		WHERE status IN (?, ?)
	`
	res, err := r.db.ExecContext(ctx, query, models.RunStatusFailed, time.Now().UTC(),
		models.RunStatusPending, models.RunStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to reset interrupted runs: %w", err)
	}
	return res.RowsAffected()
}
