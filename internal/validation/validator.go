package validation

import (
	"strings"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/routing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Interface validates one candidate against its surrounding lines.
type Interface interface {
	Validate(c types.Candidate, window []string) types.ValidationResult
	// Score is how much c reads as an experience entry, whatever section
	// it is routed to
	Score(c types.Candidate, window []string) float64
}

// requiredKinds are the lexicon lists the full validator reads.
var requiredKinds = []lexicon.Kind{
	lexicon.Employment,
	lexicon.StrongEmployment,
	lexicon.ActionVerb,
	lexicon.Role,
	lexicon.Education,
	lexicon.Placeholder,
	lexicon.SectionHeader,
	lexicon.OrgAcronym,
	lexicon.TitleAcronym,
}

// Validator runs routing, pre-filter, four gates and scoring.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	cfg    config.ValidatorConfig
	lex    *lexicon.Lexicon
	dates  *dates.Parser
	router *routing.Router
}

// New builds a Validator. A nil router is derived from the lexicon.
func New(cfg config.ValidatorConfig, lex *lexicon.Lexicon, dp *dates.Parser, r *routing.Router) (*Validator, error) {
	if lex == nil {
		return nil, &ConstructionError{Message: "lexicon is required"}
	}
	if dp == nil {
		return nil, &ConstructionError{Message: "date parser is required"}
	}
	var empty []string
	for _, k := range requiredKinds {
		if len(lex.Terms(k)) == 0 {
			empty = append(empty, string(k))
		}
	}
	if len(empty) > 0 {
		return nil, &ConstructionError{Message: "empty lexicon lists: " + strings.Join(empty, ", ")}
	}
	if cfg.Weights.Sum() <= 0 {
		return nil, &ConstructionError{Message: "gate weights sum to zero"}
	}
	if r == nil {
		r = routing.New(lex, dp)
	}
	return &Validator{cfg: cfg, lex: lex, dates: dp, router: r}, nil
}

// Validate produces the verdict for c. window holds the lines around the
// candidate used for contextual corroboration.
func (v *Validator) Validate(c types.Candidate, window []string) types.ValidationResult {
	res := types.ValidationResult{Routing: types.RouteAcceptExperience}

	switch d := v.router.RouteCandidate(c); d.Target {
	case types.ContentCertification:
		res.Routing = types.RouteToCertification
		res.Confidence = d.Confidence
		res.AddReason(ReasonRoutedToCertification)
		return res
	case types.ContentEducation:
		res.Routing = types.RouteToEducation
		res.Confidence = d.Confidence
		res.AddReason(ReasonRoutedToEducation)
		return res
	}

	v.score(c, window, &res)
	if !res.Hard && len(res.RejectionReasons) == 0 && res.Confidence < v.cfg.Threshold() {
		res.AddReason(ReasonBelowThreshold)
	}
	res.IsValid = len(res.RejectionReasons) == 0
	return res
}

// Score runs the pre-filter and the four gates without routing. A hard
// rejection scores zero.
func (v *Validator) Score(c types.Candidate, window []string) float64 {
	var res types.ValidationResult
	v.score(c, window, &res)
	return res.Confidence
}

// score fills the gate evidence and confidence of res.
func (v *Validator) score(c types.Candidate, window []string, res *types.ValidationResult) {
	if reason := v.prefilter(c); reason != "" {
		res.AddReason(reason)
		res.Hard = true
		return
	}

	orgOK := v.organizationGate(c.Organization, res)
	titleOK := v.titleGate(c.Title, res)
	ctx := v.contextGate(c, window, res)
	dateScore := v.dateGate(c, res)

	w := v.cfg.Weights
	if orgOK {
		res.Evidence.Organization = w.Organization
	}
	if titleOK {
		res.Evidence.Title = w.Title
	}
	res.Evidence.Context = ctx.score
	res.Evidence.ContextHits = ctx.hits
	res.Evidence.Dates = dateScore
	res.Evidence.DensityFactor = v.densityFactor(c)

	sum := res.Evidence.Organization + res.Evidence.Title + res.Evidence.Context + res.Evidence.Dates
	res.Confidence = types.ClampConfidence(sum * res.Evidence.DensityFactor)
	for _, r := range res.RejectionReasons {
		if IsHard(r) {
			res.Hard = true
		}
	}
	if res.Hard {
		res.Confidence = 0
	}
}
