package validation

import (
	"log/slog"
	"strings"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/routing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// fallbackConfidence is the fixed confidence of a fallback acceptance
const fallbackConfidence = 0.65

// fallbackRoles is used when no lexicon is available.
var fallbackRoles = []string{
	"ingenieur", "engineer", "developpeur", "developer", "manager", "consultant",
	"analyste", "analyst", "assistant", "technicien", "technician", "directeur",
	"director", "responsable", "stagiaire", "intern", "chef", "charge", "lead",
}

// Fallback accepts a candidate when it has dates and either a role term or
// an organization. It needs no lexicon and never fails.
type Fallback struct {
	lex   *lexicon.Lexicon
	dates *dates.Parser
}

// NewFallback creates the fallback validator. Both arguments may be nil.
func NewFallback(lex *lexicon.Lexicon, dp *dates.Parser) *Fallback {
	return &Fallback{lex: lex, dates: dp}
}

// Validate implements Interface.
func (f *Fallback) Validate(c types.Candidate, _ []string) types.ValidationResult {
	res := types.ValidationResult{Routing: types.RouteAcceptExperience}

	hasDates := c.HasDates() || (f.dates != nil && f.dates.HasDate(c.Text()))
	hasRoleOrOrg := strings.TrimSpace(c.Organization) != "" || f.hasRole(c.Title)

	if !hasDates {
		res.AddReason(ReasonFallbackMissingDates)
	}
	if !hasRoleOrOrg {
		res.AddReason(ReasonFallbackMissingRoleOrOrg)
	}
	res.IsValid = len(res.RejectionReasons) == 0
	if res.IsValid {
		res.Confidence = fallbackConfidence
	}
	return res
}

// Score implements Interface: the acceptance confidence when the fallback
// rules pass, zero otherwise.
func (f *Fallback) Score(c types.Candidate, window []string) float64 {
	return f.Validate(c, window).Confidence
}

func (f *Fallback) hasRole(title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	if f.lex != nil && len(f.lex.Terms(lexicon.Role)) > 0 {
		return f.lex.Has(lexicon.Role, title)
	}
	norm := parsing.Normalize(title)
	for _, r := range fallbackRoles {
		if parsing.ContainsTerm(norm, r) {
			return true
		}
	}
	return false
}

// Build returns the full Validator, or the Fallback when construction
// fails. The failure is logged, never returned.
func Build(cfg config.ValidatorConfig, lex *lexicon.Lexicon, dp *dates.Parser, r *routing.Router, logger *slog.Logger) Interface {
	v, err := New(cfg, lex, dp, r)
	if err != nil {
		if logger != nil {
			logger.Warn("validator construction failed, using fallback", "error", err)
		}
		return NewFallback(lex, dp)
	}
	return v
}

// IsFallback reports whether v is the fallback validator.
func IsFallback(v Interface) bool {
	_, ok := v.(*Fallback)
	return ok
}
