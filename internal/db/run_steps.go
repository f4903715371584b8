package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-sifter/internal/pipeline"
)

// StepStatus constants
const (
	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusFailed     = "failed"
	StepStatusSkipped    = "skipped"
)

// StepInput describes one pipeline step to record
type StepInput struct {
	Step       string
	Category   string
	Status     string
	Message    string
	DurationMs int64
	// Position orders steps of the same run
	Position int
}

// RunStep represents a single step execution for a run
type RunStep struct {
	RunID      uuid.UUID `json:"run_id"`
	Step       string    `json:"step"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	Position   int       `json:"position"`
	DurationMs *int64    `json:"duration_ms,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const upsertStepSQL = `INSERT INTO sift_run_steps (run_id, step, category, status, message, duration_ms, position)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)
	 ON CONFLICT (run_id, step) DO UPDATE
	 SET category = $3, status = $4, message = $5, duration_ms = $6, position = $7, updated_at = NOW()`

// RecordStep creates or updates the record of one step of a run
func (db *DB) RecordStep(ctx context.Context, runID uuid.UUID, input StepInput) error {
	_, err := db.pool.Exec(ctx, upsertStepSQL, stepArgs(runID, input)...)
	if err != nil {
		return fmt.Errorf("failed to record run step %s: %w", input.Step, err)
	}
	return nil
}

func queueStep(batch *pgx.Batch, runID uuid.UUID, input StepInput) {
	batch.Queue(upsertStepSQL, stepArgs(runID, input)...)
}

func stepArgs(runID uuid.UUID, input StepInput) []any {
	status := input.Status
	if status == "" {
		status = StepStatusCompleted
	}
	var duration *int64
	if status == StepStatusCompleted || status == StepStatusFailed {
		d := input.DurationMs
		duration = &d
	}
	return []any{runID, input.Step, input.Category, status, input.Message, duration, input.Position}
}

// ListRunSteps retrieves all steps for a run, optionally filtered by status
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID, status string) ([]RunStep, error) {
	query := `SELECT run_id, step, category, status, message, position, duration_ms, created_at, updated_at
	          FROM sift_run_steps
	          WHERE run_id = $1`
	args := []any{runID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY position, created_at"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var step RunStep
		if err := rows.Scan(&step.RunID, &step.Step, &step.Category, &step.Status, &step.Message,
			&step.Position, &step.DurationMs, &step.CreatedAt, &step.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// StepsFromEvents converts the progress events of a finished run into
// completed step records, in emission order.
func StepsFromEvents(events []pipeline.ProgressEvent) []StepInput {
	out := make([]StepInput, 0, len(events))
	for i, ev := range events {
		out = append(out, StepInput{
			Step:       ev.Step,
			Category:   ev.Category,
			Status:     StepStatusCompleted,
			Message:    ev.Message,
			DurationMs: ev.DurationMs,
			Position:   i,
		})
	}
	return out
}
