package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-sifter/internal/types"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

const defaultListLimit = 50

// Run represents a stored sifting run
type Run struct {
	ID           uuid.UUID  `json:"id"`
	DocumentID   string     `json:"document_id,omitempty"`
	Status       string     `json:"status"`
	Candidates   int        `json:"candidates"`
	Accepted     int        `json:"accepted"`
	AlertCount   int        `json:"alert_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	DocumentID string
	Status     string
	WithAlerts bool
	Limit      int
}

// StoredRecord is one output record as read back from storage
type StoredRecord struct {
	Section  string       `json:"section"`
	Position int          `json:"position"`
	Record   types.Record `json:"record"`
}

type recordRow struct {
	Section      string
	Position     int
	LineIndex    int
	Title        string
	Organization string
	Confidence   float64
	Provenance   string
	JSON         []byte
}
