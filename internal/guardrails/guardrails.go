// Package guardrails applies the document-level quality checks that run after
// validation: budgeted experience-to-education demotion and section skew
// recovery. A pass is serialized over the whole document and idempotent.
package guardrails

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/logging"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/sieve"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Budget routes
const (
	RouteDemotion = "experience_to_education"
	RouteRecovery = "skew_recovery"
)

// Decision reasons
const (
	ReasonSchoolEvidence = "school_evidence"
	ReasonSkewRecovery   = "skew_recovery"
)

// Item is one candidate in flight together with its validation verdict.
// Confidence starts as Result.Confidence and is what later passes adjust.
type Item struct {
	Candidate  types.Candidate
	Result     types.ValidationResult
	Confidence float64
}

// Snapshot is the full document state handed to a guardrails pass.
type Snapshot struct {
	Lines []string
	Items []Item
}

// Outcome is the state after a pass plus everything it decided.
type Outcome struct {
	Items     []Item
	Decisions []types.Decision
	Budgets   []types.BudgetReport
	Balance   []types.SectionBalance
	Alerts    []string
}

// Guardrails runs the demotion and balance passes.
type Guardrails struct {
	cfg    config.GuardrailsConfig
	lex    *lexicon.Lexicon
	sieve  *sieve.Sieve
	rule   sieve.DemotionRule
	logger *slog.Logger
}

// Option configures a Guardrails.
type Option func(*Guardrails)

// WithLogger sets the logger used for approvals and alerts.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guardrails) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Guardrails.
func New(cfg config.GuardrailsConfig, lex *lexicon.Lexicon, s *sieve.Sieve, opts ...Option) *Guardrails {
	g := &Guardrails{cfg: cfg, lex: lex, sieve: s, rule: sieve.RuleFromConfig(cfg), logger: logging.New("guardrails")}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run performs one pass over in. The input is not modified.
func (g *Guardrails) Run(in Snapshot) Outcome {
	out := Outcome{Items: slices.Clone(in.Items)}

	budget := g.demote(in.Lines, &out)
	out.Budgets = append(out.Budgets, budget)

	alerts, skewed := g.checkBalance(out.Items)
	out.Alerts = append(out.Alerts, alerts...)
	if skewed {
		out.Budgets = append(out.Budgets, g.recoverSkew(&out))
	}
	out.Balance = Balance(out.Items)
	return out
}

type demotion struct {
	idx      int
	evidence types.DemotionEvidence
}

func (g *Guardrails) demote(lines []string, out *Outcome) types.BudgetReport {
	var (
		eligible   []demotion
		experience int
		used       int
		perSchool  = make(map[string]int)
	)

	for i, it := range out.Items {
		c := it.Candidate
		if c.Provenance == types.ProvenanceDemoted {
			// earlier passes already spent budget on these
			experience++
			used++
			if g.sieve.IsSchool(c.Organization) {
				perSchool[parsing.Normalize(c.Organization)]++
			}
			continue
		}
		// recovered items are neither counted nor demoted
		if c.Section != types.ContentExperience || c.Provenance == types.ProvenanceRecovered {
			continue
		}
		experience++
		demote, a := g.sieve.ShouldDemote(c, lines, g.rule)
		if !demote {
			continue
		}
		eligible = append(eligible, demotion{idx: i, evidence: a.Evidence})
	}

	limit := min(g.cfg.HardCap, int(g.cfg.ShareCap*float64(experience)))
	report := types.BudgetReport{Route: RouteDemotion, Cap: limit, Used: min(used, limit), Eligible: len(eligible)}

	slices.SortStableFunc(eligible, func(a, b demotion) int {
		if c := cmp.Compare(b.evidence.Count(), a.evidence.Count()); c != 0 {
			return c
		}
		ia, ib := out.Items[a.idx], out.Items[b.idx]
		if c := cmp.Compare(ia.Confidence, ib.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(ia.Candidate.LineIndex, ib.Candidate.LineIndex)
	})

	for _, d := range eligible {
		if report.Used >= limit {
			report.Exhausted = true
			g.logger.Info("demotion budget exhausted",
				slog.Int("cap", limit),
				slog.Int("line", out.Items[d.idx].Candidate.LineIndex))
			break
		}
		if school := d.evidence.SchoolName; school != "" {
			if perSchool[school] >= g.cfg.PerSchoolCap {
				g.logger.Debug("per-school cap reached", slog.String("school", school))
				continue
			}
			perSchool[school]++
		}
		report.Used++

		it := &out.Items[d.idx]
		original := it.Result
		ev := d.evidence
		it.Candidate.Section = types.ContentEducation
		it.Candidate.Provenance = types.ProvenanceDemoted
		out.Decisions = append(out.Decisions, types.Decision{
			LineIndex:  it.Candidate.LineIndex,
			Title:      it.Candidate.Title,
			From:       types.ContentExperience,
			To:         types.ContentEducation,
			Provenance: types.ProvenanceDemoted,
			Reason:     ReasonSchoolEvidence,
			Confidence: it.Confidence,
			Evidence:   &ev,
			Original:   &original,
		})
		g.logger.Info("demotion approved",
			slog.Int("line", it.Candidate.LineIndex),
			slog.String("title", it.Candidate.Title),
			slog.Int("evidence_count", ev.Count()),
			slog.Bool("org_is_school", ev.OrgIsSchool),
			slog.Bool("org_missing_or_suspect", ev.OrgMissingOrSuspect),
			slog.Bool("no_employment_keywords", ev.NoEmploymentKeywordsNearby),
			slog.Bool("education_keywords", ev.EducationKeywordsPresent))
	}
	if report.Used >= limit && len(eligible) > 0 {
		report.Exhausted = true
	}
	return report
}

// checkBalance raises a skew alert when education dwarfs a thin experience section.
func (g *Guardrails) checkBalance(items []Item) ([]string, bool) {
	counts := sectionCounts(items)
	exp := counts[types.ContentExperience]
	edu := counts[types.ContentEducation]
	ratio := float64(edu) / float64(max(exp, 1))
	if ratio <= g.cfg.RatioTrigger || exp >= g.cfg.FloorThreshold {
		return nil, false
	}

	severity := types.SeverityWarning
	if exp == 0 {
		severity = types.SeverityCritical
	}
	alert := fmt.Sprintf("%s section skew: education=%d experience=%d ratio=%.1f", severity, edu, exp, ratio)
	g.logger.Warn("section skew detected",
		slog.Int("education", edu),
		slog.Int("experience", exp),
		slog.Float64("ratio", ratio))
	return []string{alert}, true
}

// recoverSkew promotes borderline items with experience-like wording back into experience.
func (g *Guardrails) recoverSkew(out *Outcome) types.BudgetReport {
	report := types.BudgetReport{Route: RouteRecovery, Cap: g.cfg.RecoveryCap}

	var pool []int
	for i, it := range out.Items {
		c := it.Candidate
		if c.Provenance == types.ProvenanceRecovered {
			report.Used++
			continue
		}
		if !recoverable(c) || c.Provenance == types.ProvenanceDemoted {
			continue
		}
		if it.Confidence < g.cfg.BandLow || it.Confidence > g.cfg.BandHigh {
			continue
		}
		if !g.experienceSignal(c.Text()) {
			continue
		}
		pool = append(pool, i)
	}
	report.Eligible = len(pool)
	report.Used = min(report.Used, report.Cap)

	slices.SortStableFunc(pool, func(a, b int) int {
		if c := cmp.Compare(out.Items[b].Confidence, out.Items[a].Confidence); c != 0 {
			return c
		}
		return cmp.Compare(out.Items[a].Candidate.LineIndex, out.Items[b].Candidate.LineIndex)
	})

	for _, idx := range pool {
		if report.Used >= report.Cap {
			report.Exhausted = true
			break
		}
		report.Used++

		it := &out.Items[idx]
		from := it.Candidate.Section
		original := it.Result
		it.Candidate.Section = types.ContentExperience
		it.Candidate.Provenance = types.ProvenanceRecovered
		it.Confidence = types.ClampConfidence(it.Confidence + g.cfg.RecoveryBoost)
		out.Decisions = append(out.Decisions, types.Decision{
			LineIndex:  it.Candidate.LineIndex,
			Title:      it.Candidate.Title,
			From:       from,
			To:         types.ContentExperience,
			Provenance: types.ProvenanceRecovered,
			Reason:     ReasonSkewRecovery,
			Confidence: it.Confidence,
			Original:   &original,
		})
		g.logger.Info("item recovered into experience",
			slog.Int("line", it.Candidate.LineIndex),
			slog.String("from", from.String()),
			slog.Float64("confidence", it.Confidence))
	}
	return report
}

func recoverable(c types.Candidate) bool {
	switch c.Section {
	case types.ContentEducation, types.ContentProject, types.ContentUnknown:
		return true
	}
	return false
}

func (g *Guardrails) experienceSignal(text string) bool {
	norm := parsing.Normalize(text)
	for _, kind := range []lexicon.Kind{lexicon.Employment, lexicon.ActionVerb, lexicon.Role, lexicon.OrgSuffix} {
		if g.lex.HasNormalized(kind, norm) {
			return true
		}
	}
	return false
}

// Balance reports every section's size relative to experience.
func Balance(items []Item) []types.SectionBalance {
	counts := sectionCounts(items)
	exp := float64(max(counts[types.ContentExperience], 1))
	out := make([]types.SectionBalance, 0, len(types.AllContentTypes))
	for _, section := range types.AllContentTypes {
		n := counts[section]
		out = append(out, types.SectionBalance{
			Section:   section,
			ItemCount: n,
			IsEmpty:   n == 0,
			SkewRatio: float64(n) / exp,
		})
	}
	return out
}

func sectionCounts(items []Item) map[types.ContentType]int {
	counts := make(map[types.ContentType]int)
	for _, it := range items {
		counts[it.Candidate.Section]++
	}
	return counts
}
