// Package db provides optional PostgreSQL storage for sifting runs, their
// records and reports. The pipeline never depends on it.
package db

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-sifter/internal/types"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema applies the embedded schema files in name order. Every
// statement is idempotent, so it is safe to call on each start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	files, err := schemaFiles()
	if err != nil {
		return err
	}
	for _, name := range files {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("failed to apply schema %s: %w", name, err)
		}
	}
	return nil
}

func schemaFiles() ([]string, error) {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list schema files: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// CreateRun creates a new run record in the running state and returns its ID
func (db *DB) CreateRun(ctx context.Context, documentID string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sift_runs (id, document_id, status) VALUES ($1, $2, $3)`,
		id, documentID, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with the given status. errMsg is
// stored only when non-empty.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status, errMsg string) error {
	var msg *string
	if errMsg != "" {
		msg = &errMsg
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE sift_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		status, msg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Kind: "run", ID: runID.String()}
	}
	return nil
}

// SaveResult stores a whole run result in one transaction: the run row with
// its report, every section record and the step timings. The run ID of res
// is reused when it is a UUID.
func (db *DB) SaveResult(ctx context.Context, res *types.RunResult, steps []StepInput) (uuid.UUID, error) {
	if res == nil {
		return uuid.Nil, errors.New("nil run result")
	}
	id := runUUID(res.RunID)

	report, err := json.Marshal(res.Report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	rows, err := recordRows(res)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx,
		`INSERT INTO sift_runs (id, document_id, status, candidates, accepted, alert_count, report, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (id) DO UPDATE SET status = $3, candidates = $4, accepted = $5,
		     alert_count = $6, report = $7, completed_at = NOW()`,
		id, res.DocumentID, RunStatusCompleted, res.Report.Candidates, res.Report.Accepted,
		len(res.Report.Alerts), report,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM sift_records WHERE run_id = $1`, id)
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO sift_records (run_id, section, position, line_index, title, organization, confidence, provenance, record)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, r.Section, r.Position, r.LineIndex, r.Title, r.Organization, r.Confidence, r.Provenance, r.JSON,
		)
	}
	for i, s := range steps {
		s.Position = i
		queueStep(batch, id, s)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a run by ID, or nil when it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	var errMsg *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, document_id, status, candidates, accepted, alert_count, error_message, created_at, completed_at
		 FROM sift_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.DocumentID, &run.Status, &run.Candidates, &run.Accepted, &run.AlertCount,
		&errMsg, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if errMsg != nil {
		run.ErrorMessage = *errMsg
	}
	return &run, nil
}

// GetReport retrieves the stored report of a run, or nil when there is none
func (db *DB) GetReport(ctx context.Context, runID uuid.UUID) (*types.Report, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx, `SELECT report FROM sift_runs WHERE id = $1`, runID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var report types.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// ListRuns retrieves runs matching filters, most recent first
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	query, args := listRunsQuery(filters)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var errMsg *string
		if err := rows.Scan(&run.ID, &run.DocumentID, &run.Status, &run.Candidates, &run.Accepted,
			&run.AlertCount, &errMsg, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if errMsg != nil {
			run.ErrorMessage = *errMsg
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func listRunsQuery(filters RunFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	query := `SELECT id, document_id, status, candidates, accepted, alert_count, error_message, created_at, completed_at
		FROM sift_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.DocumentID != "" {
		query += fmt.Sprintf(" AND document_id = $%d", argNum)
		args = append(args, filters.DocumentID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.WithAlerts {
		query += " AND alert_count > 0"
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

// ListRecords retrieves the stored records of a run in output order. An
// empty section returns every section.
func (db *DB) ListRecords(ctx context.Context, runID uuid.UUID, section string) ([]StoredRecord, error) {
	query := `SELECT section, position, record FROM sift_records WHERE run_id = $1`
	args := []any{runID}
	if section != "" {
		query += " AND section = $2"
		args = append(args, section)
	}
	query += " ORDER BY section, position"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var sr StoredRecord
		var raw []byte
		if err := rows.Scan(&sr.Section, &sr.Position, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal(raw, &sr.Record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// DeleteRun deletes a run and its records and steps (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM sift_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Kind: "run", ID: runID.String()}
	}
	return nil
}

func runUUID(runID string) uuid.UUID {
	if id, err := uuid.Parse(runID); err == nil {
		return id
	}
	return uuid.New()
}

// recordRows flattens the sections of res in content-type order.
func recordRows(res *types.RunResult) ([]recordRow, error) {
	var rows []recordRow
	for _, c := range types.AllContentTypes {
		for i, rec := range res.Section(c) {
			data, err := json.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal %s record %d: %w", c, i, err)
			}
			rows = append(rows, recordRow{
				Section:      c.String(),
				Position:     i,
				LineIndex:    rec.LineIndex,
				Title:        rec.Title,
				Organization: rec.Organization,
				Confidence:   rec.Confidence,
				Provenance:   string(rec.Provenance),
				JSON:         data,
			})
		}
	}
	return rows, nil
}
