// Package types provides type definitions for structured data used throughout the resume-sifter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "slices"

// GateScores holds the per-gate sub-scores that make up a confidence value.
type GateScores struct {
	Organization float64 `json:"organization"`
	Title        float64 `json:"title"`
	Context      float64 `json:"context"`
	Dates        float64 `json:"dates"`
	// DensityFactor is the multiplicative information-density nudge (0.88-1.12)
	DensityFactor float64 `json:"density_factor"`
	ContextHits   int     `json:"context_hits"`
}

// ValidationResult is the validator's verdict on one candidate.
// It is never mutated after it is produced; later reclassification creates a Decision.
type ValidationResult struct {
	IsValid          bool       `json:"is_valid"`
	Confidence       float64    `json:"confidence"`
	RejectionReasons []string   `json:"rejection_reasons,omitempty"`
	Routing          Routing    `json:"routing"`
	Evidence         GateScores `json:"evidence_breakdown"`
	Hard             bool       `json:"hard_rejection,omitempty"`
}

// AddReason appends a rejection code once, preserving first-seen order.
func (v *ValidationResult) AddReason(code string) {
	if !slices.Contains(v.RejectionReasons, code) {
		v.RejectionReasons = append(v.RejectionReasons, code)
	}
}

// HasReason reports whether code was recorded.
func (v ValidationResult) HasReason(code string) bool {
	return slices.Contains(v.RejectionReasons, code)
}

// DemotionEvidence is the fixed set of signals weighed before moving an
// experience item to education.
type DemotionEvidence struct {
	OrgIsSchool                bool   `json:"org_is_school"`
	OrgMissingOrSuspect        bool   `json:"org_missing_or_suspect"`
	NoEmploymentKeywordsNearby bool   `json:"no_employment_keywords_nearby"`
	EducationKeywordsPresent   bool   `json:"education_keywords_present"`
	SchoolName                 string `json:"school_name,omitempty"`
}

// Count returns how many of the four signals are set.
func (e DemotionEvidence) Count() int {
	n := 0
	for _, b := range []bool{e.OrgIsSchool, e.OrgMissingOrSuspect, e.NoEmploymentKeywordsNearby, e.EducationKeywordsPresent} {
		if b {
			n++
		}
	}
	return n
}

// Eligible reports whether the evidence meets the minimum count.
func (e DemotionEvidence) Eligible(minCount int) bool {
	return e.Count() >= minCount
}

// Decision is an audit record of a reclassification made after validation.
type Decision struct {
	LineIndex  int               `json:"line_index"`
	Title      string            `json:"title,omitempty"`
	From       ContentType       `json:"from"`
	To         ContentType       `json:"to"`
	Provenance Provenance        `json:"provenance"`
	Reason     string            `json:"reason"`
	Confidence float64           `json:"confidence"`
	Evidence   *DemotionEvidence `json:"evidence,omitempty"`
	// Original is the validation result as it stood before the decision
	Original *ValidationResult `json:"original,omitempty"`
}

// SectionBalance describes the size of one section relative to experience.
type SectionBalance struct {
	Section   ContentType `json:"section"`
	ItemCount int         `json:"item_count"`
	IsEmpty   bool        `json:"is_empty"`
	SkewRatio float64     `json:"skew_ratio"`
}

// BudgetReport is the utilization of one demotion route's budget.
type BudgetReport struct {
	Route     string `json:"route"`
	Cap       int    `json:"cap"`
	Used      int    `json:"used"`
	Eligible  int    `json:"eligible"`
	Exhausted bool   `json:"exhausted"`
}

// ClampConfidence bounds v to [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
