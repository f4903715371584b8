package validation

import (
	"strings"

	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

const (
	// contextSaturation is the hit count that earns the full context weight
	contextSaturation = 4
	// strictMinHits is the corroboration floor in strict mode
	strictMinHits = 2
	// structuredDateConfidence scores dates given as fields rather than text
	structuredDateConfidence = 0.9
	// densitySaturation is the distinct-token count that earns the full density bonus
	densitySaturation = 10
)

type contextScore struct {
	score float64
	hits  int
}

// contextGate counts employment keywords and action verbs over the window
// and the candidate itself.
func (v *Validator) contextGate(c types.Candidate, window []string, res *types.ValidationResult) contextScore {
	norm := parsing.Normalize(strings.Join(append(window[:len(window):len(window)], c.Text()), " "))
	keywords := len(v.lex.MatchesNormalized(lexicon.Employment, norm))
	verbs := len(v.lex.MatchesNormalized(lexicon.ActionVerb, norm))
	strong := v.lex.HasNormalized(lexicon.StrongEmployment, norm)
	hits := keywords + verbs

	if v.cfg.Strict() && hits < strictMinHits && !strong {
		res.AddReason(ReasonInsufficientContext)
		return contextScore{hits: hits}
	}

	w := v.cfg.Weights.Context
	score := min(1, float64(hits)/contextSaturation) * w
	if keywords > 0 && verbs > 0 {
		score = min(score*v.cfg.ComboBonus, w)
	}
	return contextScore{score: score, hits: hits}
}

// dateGate scores date quality and flags inverted ranges.
func (v *Validator) dateGate(c types.Candidate, res *types.ValidationResult) float64 {
	w := v.cfg.Weights.Dates

	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		res.AddReason(ReasonDateInverted)
		return 0
	}

	text := c.DateText
	if text == "" {
		text = c.Text()
	}
	stream := v.dates.Parse(text)
	if stream.Inverted() {
		res.AddReason(ReasonDateInverted)
		return 0
	}
	if best, ok := stream.Next(); ok {
		return best.Confidence * w
	}
	if c.StartDate != nil || c.IsCurrent {
		return structuredDateConfidence * w
	}
	return 0
}

// densityFactor nudges the score by up to DensityBonus either way: sparse
// candidates lose, detailed ones gain.
func (v *Validator) densityFactor(c types.Candidate) float64 {
	distinct := make(map[string]bool)
	for _, t := range parsing.Tokens(c.Text()) {
		distinct[t] = true
	}
	richness := min(1, float64(len(distinct))/densitySaturation)
	return 1 + v.cfg.DensityBonus*(2*richness-1)
}
