package sieve

import (
	"strings"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Rebind outcomes
const (
	RebindOrgOK              = "organization_ok"
	RebindEmploymentOverride = "employment_override"
	RebindNoAlternative      = "no_alternative"
	RebindRebound            = "rebound"
)

// RebindResult describes what Rebind did to a candidate.
type RebindResult struct {
	LineIndex int    `json:"line_index"`
	From      string `json:"from"`
	To        string `json:"to"`
	Rebound   bool   `json:"rebound"`
	Reason    string `json:"reason"`
	Match     *Match `json:"match,omitempty"`
}

// Rebind replaces a missing, suspect or school organization with the nearest
// valid one. It fails closed: without a better alternative the candidate is
// left as it was. A school backed by strong employment context is kept.
func (s *Sieve) Rebind(c *types.Candidate, lines []string, hints []types.EntityHint) RebindResult {
	current := strings.TrimSpace(c.Organization)
	res := RebindResult{LineIndex: c.LineIndex, From: current, To: current}

	school := current != "" && s.IsSchool(current)
	if current != "" && !school && !s.suspect(current) {
		res.Reason = RebindOrgOK
		return res
	}
	if school && s.EmploymentContextScore(lines, c.LineIndex, s.cfg.ContextRadius) > s.cfg.EmploymentThreshold {
		res.Reason = RebindEmploymentOverride
		return res
	}

	m, ok := s.find(lines, c.LineIndex, s.cfg.SearchRadius, hints, current)
	if !ok {
		res.Reason = RebindNoAlternative
		return res
	}
	if c.OriginalOrganization == "" {
		c.OriginalOrganization = current
	}
	c.Organization = m.Name
	res.To = m.Name
	res.Rebound = true
	res.Reason = RebindRebound
	res.Match = &m
	return res
}

// Assessment is the sieve's view of whether a candidate is really schooling.
type Assessment struct {
	Evidence        types.DemotionEvidence
	EmploymentScore float64
	// Override is set when employment context is strong enough to keep a school organization
	Override bool
}

// Assess gathers the four demotion signals for c.
func (s *Sieve) Assess(c types.Candidate, lines []string) Assessment {
	org := strings.TrimSpace(c.Organization)
	keywords, _, _ := s.contextCounts(lines, c.LineIndex, s.cfg.ContextRadius)
	score := s.EmploymentContextScore(lines, c.LineIndex, s.cfg.ContextRadius)

	own := c.Text()
	if c.LineIndex >= 0 && c.LineIndex < len(lines) {
		own += " " + lines[c.LineIndex]
	}

	ev := types.DemotionEvidence{
		OrgIsSchool:                org != "" && s.IsSchool(org),
		OrgMissingOrSuspect:        org == "" || s.suspect(org),
		NoEmploymentKeywordsNearby: keywords == 0,
		EducationKeywordsPresent:   s.lex.Has(lexicon.Education, own) || s.lex.Has(lexicon.Degree, own),
	}
	if ev.OrgIsSchool {
		ev.SchoolName = parsing.Normalize(org)
	}
	return Assessment{
		Evidence:        ev,
		EmploymentScore: score,
		Override:        score > s.cfg.EmploymentThreshold,
	}
}

// DemotionRule is the evidence an experience item needs before it may be
// demoted to education.
type DemotionRule struct {
	// MinEvidence is the signal count that suffices on its own
	MinEvidence int
	// StrongMinimum applies when the organization is a school and the text
	// carries education keywords
	StrongMinimum int
}

// RuleFromConfig reads the demotion thresholds of the guardrails config.
func RuleFromConfig(cfg config.GuardrailsConfig) DemotionRule {
	return DemotionRule{MinEvidence: cfg.MinEvidenceCount, StrongMinimum: cfg.StrongEvidenceMinimum}
}

// Allows reports whether ev meets the rule.
func (r DemotionRule) Allows(ev types.DemotionEvidence) bool {
	if ev.Eligible(r.MinEvidence) {
		return true
	}
	return ev.OrgIsSchool && ev.EducationKeywordsPresent && ev.Count() >= r.StrongMinimum
}

// ShouldDemote reports whether c looks like schooling rather than work under
// rule, with the assessment behind the answer. Strong employment context
// always wins.
func (s *Sieve) ShouldDemote(c types.Candidate, lines []string, rule DemotionRule) (bool, Assessment) {
	a := s.Assess(c, lines)
	if a.Override {
		return false, a
	}
	return rule.Allows(a.Evidence), a
}
