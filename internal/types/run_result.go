// Package types provides type definitions for structured data used throughout the resume-sifter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Record is one accepted (or retained) entry in an output section.
type Record struct {
	Title        string     `json:"title,omitempty"`
	Organization string     `json:"organization,omitempty"`
	StartDate    *YearMonth `json:"start_date,omitempty"`
	EndDate      *YearMonth `json:"end_date,omitempty"`
	IsCurrent    bool       `json:"is_current"`
	Description  string     `json:"description,omitempty"`
	Confidence   float64    `json:"confidence"`
	Provenance   Provenance `json:"source_provenance"`
	LineIndex    int        `json:"line_index"`
	Subtype      Subtype    `json:"subtype,omitempty"`

	OriginalOrganization string            `json:"original_organization,omitempty"`
	Validation           *ValidationResult `json:"validation,omitempty"`
}

// Report is the run-level diagnostics summary.
type Report struct {
	Candidates     int              `json:"candidates"`
	Accepted       int              `json:"accepted"`
	GateRejections map[string]int   `json:"gate_rejections"`
	Budgets        []BudgetReport   `json:"budgets"`
	Balance        []SectionBalance `json:"balance"`
	Alerts         []string         `json:"alerts"`
	Decisions      []Decision       `json:"decisions"`
	Rebinds        int              `json:"rebinds"`
	Duplicates     int              `json:"duplicates_removed"`
	FallbackUsed   bool             `json:"fallback_validator_used"`
	ConfigFromFile bool             `json:"config_from_file"`
	CurrentYear    int              `json:"current_year"`
}

// RunResult is the output of one pipeline run over one document.
type RunResult struct {
	RunID      string                   `json:"run_id"`
	DocumentID string                   `json:"document_id,omitempty"`
	Sections   map[ContentType][]Record `json:"sections"`
	Report     Report                   `json:"report"`
}

// Section returns the records for c, never nil.
func (r *RunResult) Section(c ContentType) []Record {
	if r == nil || r.Sections == nil {
		return []Record{}
	}
	if recs, ok := r.Sections[c]; ok {
		return recs
	}
	return []Record{}
}

// Alert severities used as prefixes on Report.Alerts.
const (
	SeverityWarning  = "WARNING:"
	SeverityCritical = "CRITICAL:"
)
