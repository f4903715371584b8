// Package types provides type definitions for structured data used throughout the resume-sifter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Candidate is an unvalidated item proposed by upstream section slicing.
// The pipeline may rebind its organization and re-tag its section but never drops it.
type Candidate struct {
	Title        string      `json:"title,omitempty"`
	Organization string      `json:"organization,omitempty"`
	Description  string      `json:"description,omitempty"`
	LineIndex    int         `json:"line_index"`
	DateText     string      `json:"date_text,omitempty"`
	StartDate    *YearMonth  `json:"start_date,omitempty"`
	EndDate      *YearMonth  `json:"end_date,omitempty"`
	IsCurrent    bool        `json:"is_current"`
	Section      ContentType `json:"section"`
	Subtype      Subtype     `json:"subtype,omitempty"`

	// OriginalOrganization is set when the sieve rebinds Organization
	OriginalOrganization string     `json:"original_organization,omitempty"`
	Provenance           Provenance `json:"provenance,omitempty"`
}

// Text joins the title, organization and description for lexical checks.
func (c Candidate) Text() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{c.Title, c.Organization, c.DateText, c.Description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// HasDates reports whether the candidate carries any date information.
func (c Candidate) HasDates() bool {
	return c.DateText != "" || c.StartDate != nil || c.EndDate != nil || c.IsCurrent
}

// EntityHint is an externally supplied named-entity annotation.
type EntityHint struct {
	Text       string  `json:"text" validate:"required"`
	Label      string  `json:"label" validate:"required"`
	LineIdx    int     `json:"line_idx" validate:"gte=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Entity labels understood by the sieve.
const (
	EntityOrg    = "ORG"
	EntitySchool = "SCHOOL"
	EntityDate   = "DATE"
	EntityTitle  = "TITLE"
)

// Document is one résumé: its lines plus the candidates sliced from them.
type Document struct {
	ID         string       `json:"id,omitempty"`
	Lines      []string     `json:"lines" validate:"required"`
	Language   string       `json:"language,omitempty" validate:"omitempty,oneof=fr en"`
	Entities   []EntityHint `json:"entities,omitempty" validate:"dive"`
	Candidates []Candidate  `json:"candidates"`
}

// EntitiesNear returns the hints whose line is within radius of target.
func (d Document) EntitiesNear(target, radius int) []EntityHint {
	var out []EntityHint
	for _, e := range d.Entities {
		if e.LineIdx >= target-radius && e.LineIdx <= target+radius {
			out = append(out, e)
		}
	}
	return out
}
