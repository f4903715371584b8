package pipeline

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/guardrails"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/routing"
	"github.com/jonathan/resume-sifter/internal/types"
	"github.com/jonathan/resume-sifter/internal/validation"
)

// route tags every candidate with its target section and fills missing
// structured dates. An unresolved routing keeps the section proposed upstream.
func (e *Engine) route(candidates []types.Candidate, lines []string) []guardrails.Item {
	items := make([]guardrails.Item, len(candidates))
	for i, c := range candidates {
		if c.Provenance == "" {
			c.Provenance = types.ProvenanceExtracted
		}
		e.fillDates(&c, lines)
		d := e.router.RouteCandidate(c)
		target := d.Target
		if target == types.ContentUnknown {
			target = c.Section
		}
		if c.Section != types.ContentUnknown && target != c.Section {
			c.Provenance = types.ProvenanceRouted
		}
		c.Section = target
		if d.Subtype != types.SubtypeNone {
			c.Subtype = d.Subtype
		}

		conf := e.routedConfidence(c, d.Confidence, lines)
		items[i] = guardrails.Item{
			Candidate: c,
			Result: types.ValidationResult{
				IsValid:    target != types.ContentUnknown,
				Confidence: conf,
				Routing:    routing.Decision{Target: target}.Routing(),
			},
			Confidence: conf,
		}
	}
	return items
}

// routedConfidence scores a candidate that skips experience validation.
// Education and project items average the router's confidence with how
// little they read as experience, so entries that look like both land
// between the two. Unknown items take the experience score alone. Experience
// candidates are rescored by the validator later.
func (e *Engine) routedConfidence(c types.Candidate, routed float64, lines []string) float64 {
	switch c.Section {
	case types.ContentEducation, types.ContentProject:
		score := e.validator.Score(c, e.window(lines, c.LineIndex))
		return types.ClampConfidence((routed + 1 - score) / 2)
	case types.ContentUnknown:
		return e.validator.Score(c, e.window(lines, c.LineIndex))
	}
	return routed
}

func (e *Engine) window(lines []string, idx int) []string {
	return dates.Texts(dates.Window(lines, idx, e.cfg.Validator.ContextWindow))
}

// validateOne runs the validator and re-tags the candidate from its verdict.
// Rejected candidates move to the unknown section and keep their confidence.
func (e *Engine) validateOne(lines []string, it guardrails.Item) guardrails.Item {
	c := it.Candidate
	res := e.validator.Validate(c, e.window(lines, c.LineIndex))

	switch {
	case res.Routing != types.RouteAcceptExperience:
		c.Section = res.Routing.Target()
		c.Provenance = types.ProvenanceRouted
	case !res.IsValid:
		c.Section = types.ContentUnknown
	default:
		c.Section = types.ContentExperience
		if validation.IsFallback(e.validator) {
			c.Provenance = types.ProvenanceFallback
		}
	}
	return guardrails.Item{Candidate: c, Result: res, Confidence: res.Confidence}
}

// fillDates sets structured dates from the date text, or the candidate's own
// line, when upstream provided none.
func (e *Engine) fillDates(c *types.Candidate, lines []string) {
	if c.StartDate != nil || c.EndDate != nil {
		return
	}
	text := c.DateText
	if text == "" && c.LineIndex >= 0 && c.LineIndex < len(lines) {
		text = lines[c.LineIndex]
	}
	if text == "" {
		return
	}
	d, ok := e.dates.Best(text)
	if !ok || d.DateType == types.DateDuration || d.DateType == types.DateRelative {
		return
	}
	c.StartDate = d.Start()
	c.EndDate = d.End()
	c.IsCurrent = c.IsCurrent || d.IsCurrent
}

// rebindAll looks for a better organization for accepted and borderline
// experience candidates, and revalidates the ones that changed.
func (e *Engine) rebindAll(doc types.Document, items []guardrails.Item, logger *slog.Logger) int {
	rebinds := 0
	for i := range items {
		if !e.rebindable(items[i]) {
			continue
		}
		c := items[i].Candidate
		hints := doc.EntitiesNear(c.LineIndex, e.cfg.Sieve.SearchRadius)
		res := e.sieve.Rebind(&c, doc.Lines, hints)
		if !res.Rebound {
			continue
		}
		rebinds++
		logger.Info("organization rebound",
			slog.Int("line", c.LineIndex),
			slog.String("from", res.From),
			slog.String("to", res.To),
			slog.String("source", res.Match.Source),
			slog.Int("distance", res.Match.Distance))

		c.Section = types.ContentExperience
		items[i] = e.validateOne(doc.Lines, guardrails.Item{Candidate: c})
	}
	return rebinds
}

// rebindable is true for accepted experience and for soft-rejected
// candidates whose confidence sits at or above the recovery band.
func (e *Engine) rebindable(it guardrails.Item) bool {
	switch it.Candidate.Section {
	case types.ContentExperience:
		return it.Result.IsValid
	case types.ContentUnknown:
		return len(it.Result.RejectionReasons) > 0 &&
			!it.Result.Hard &&
			it.Result.Routing == types.RouteAcceptExperience &&
			it.Confidence >= e.cfg.Guardrails.BandLow
	}
	return false
}

// buildSections turns items into deduplicated, line-ordered records.
func buildSections(items []guardrails.Item) (map[types.ContentType][]types.Record, int) {
	sections := make(map[types.ContentType][]types.Record, len(types.AllContentTypes))
	for _, section := range types.AllContentTypes {
		sections[section] = []types.Record{}
	}
	for _, it := range items {
		c := it.Candidate
		res := it.Result
		sections[c.Section] = append(sections[c.Section], types.Record{
			Title:                c.Title,
			Organization:         c.Organization,
			StartDate:            c.StartDate,
			EndDate:              c.EndDate,
			IsCurrent:            c.IsCurrent,
			Description:          c.Description,
			Confidence:           types.ClampConfidence(it.Confidence),
			Provenance:           c.Provenance,
			LineIndex:            c.LineIndex,
			Subtype:              c.Subtype,
			OriginalOrganization: c.OriginalOrganization,
			Validation:           &res,
		})
	}

	removed := 0
	for section, recs := range sections {
		kept, n := parsing.Deduplicate(recs)
		parsing.SortRecords(kept)
		sections[section] = kept
		removed += n
	}
	return sections, removed
}

func (e *Engine) buildReport(doc types.Document, out guardrails.Outcome, sections map[types.ContentType][]types.Record, rebinds, removed int) types.Report {
	report := types.Report{
		Candidates:     len(doc.Candidates),
		Accepted:       len(sections[types.ContentExperience]),
		GateRejections: make(map[string]int),
		Budgets:        out.Budgets,
		Balance:        out.Balance,
		Alerts:         slices.Clone(out.Alerts),
		Decisions:      out.Decisions,
		Rebinds:        rebinds,
		Duplicates:     removed,
		FallbackUsed:   e.FallbackActive(),
		ConfigFromFile: e.fromFile,
		CurrentYear:    e.dates.CurrentYear(),
	}
	for _, it := range out.Items {
		for _, reason := range it.Result.RejectionReasons {
			if reason == validation.ReasonRoutedToCertification || reason == validation.ReasonRoutedToEducation {
				continue
			}
			report.GateRejections[reason]++
		}
	}
	if report.FallbackUsed {
		report.Alerts = append(report.Alerts, fmt.Sprintf("%s fallback validator in use", types.SeverityWarning))
	}
	if report.Candidates > 0 && report.Accepted == 0 && !hasCritical(report.Alerts) {
		report.Alerts = append(report.Alerts, fmt.Sprintf("%s no experience entry accepted out of %d candidates", types.SeverityWarning, report.Candidates))
	}
	if report.Decisions == nil {
		report.Decisions = []types.Decision{}
	}
	if report.Alerts == nil {
		report.Alerts = []string{}
	}
	return report
}

func hasCritical(alerts []string) bool {
	for _, a := range alerts {
		if strings.HasPrefix(a, types.SeverityCritical) {
			return true
		}
	}
	return false
}
