package dates

import (
	"strings"

	"github.com/jonathan/resume-sifter/internal/types"
)

// base confidences per expression shape
const (
	confRangePrecise   = 0.95
	confRangeMixed     = 0.90
	confRangeYears     = 0.85
	confOngoingPrecise = 0.90
	confOngoingYear    = 0.80
	confSinglePrecise  = 0.75
	confSingleYear     = 0.55
	confDuration       = 0.50
	confRelative       = 0.35
	confOngoingAlone   = 0.30

	// multiplicative penalties
	penaltyOCR       = 0.95
	penaltyTwoDigit  = 0.95
	penaltyNoConnect = 0.90
)

// parseLine finds every date expression of one line, before deduplication.
func (p *Parser) parseLine(line string, lineIdx int) ([]types.ParsedDate, []Rejection) {
	pr := prepare(line, p.cfg.OCRTolerance)
	cy := p.CurrentYear()
	atoms := scan(pr, p.cfg.CenturyCutoff, cy)
	if len(atoms) == 0 {
		return nil, nil
	}

	var found []types.ParsedDate
	var rejected []Rejection
	keep := func(d types.ParsedDate) {
		d.LineIndex = lineIdx
		if reason := p.check(d, cy); reason != "" {
			rejected = append(rejected, Rejection{Text: d.OriginalText, Reason: reason, LineIndex: lineIdx})
			return
		}
		d.Confidence = types.ClampConfidence(d.Confidence)
		found = append(found, d)
	}

	used := make([]bool, len(atoms))
	for i, a := range atoms {
		if used[i] {
			continue
		}
		switch a.kind {
		case atomOngoing:
			continue
		case atomDuration:
			used[i] = true
			keep(types.ParsedDate{
				OriginalText:   pr.span(a.start, a.end),
				DateType:       types.DateDuration,
				DurationMonths: types.IntPtr(a.months),
				Confidence:     confDuration,
			})
			continue
		case atomRelative:
			used[i] = true
			keep(types.ParsedDate{
				OriginalText: pr.span(a.start, a.end),
				DateType:     types.DateRelative,
				StartYear:    types.IntPtr(a.year),
				EndYear:      types.IntPtr(a.year),
				Confidence:   confRelative,
			})
			continue
		}

		if i+1 < len(atoms) && !used[i+1] {
			b := atoms[i+1]
			if connected, explicit := pairable(pr.text[a.end:b.start], a, b); connected {
				used[i], used[i+1] = true, true
				keep(rangeOf(pr, a, b, explicit))
				continue
			}
		}
		if a.kind == atomMonthOnly {
			continue
		}
		used[i] = true
		if reSince.MatchString(pr.text[:a.start]) {
			keep(ongoingOf(pr, a, a.start))
			continue
		}
		keep(singleOf(pr, a))
	}

	if len(found) == 0 && len(rejected) == 0 {
		for i, a := range atoms {
			if a.kind == atomOngoing && !used[i] {
				keep(types.ParsedDate{
					OriginalText: pr.span(a.start, a.end),
					DateType:     types.DateOngoing,
					IsCurrent:    true,
					Confidence:   confOngoingAlone,
				})
				break
			}
		}
	}
	return found, rejected
}

// pairable reports whether a and b, separated by between, form a range and
// whether an explicit connector joined them.
func pairable(between string, a, b atom) (connected, explicit bool) {
	if strings.Contains(between, ",") || strings.Contains(between, ";") {
		return false, false
	}
	explicit = reConnector.MatchString(between)
	bare := strings.TrimSpace(between) == ""
	if !explicit && !bare {
		return false, false
	}

	switch {
	case b.kind == atomOngoing:
		return a.isPoint(), explicit
	case !b.isPoint():
		return false, false
	case a.kind == atomMonthOnly:
		return true, explicit
	case !a.isPoint():
		return false, false
	case explicit:
		return true, true
	}
	// a bare gap only joins like with like: "2019 2021", "01/2019 03/2020"
	sameShape := (a.kind == atomYear) == (b.kind == atomYear)
	return sameShape, false
}

func rangeOf(pr prepared, a, b atom, explicit bool) types.ParsedDate {
	if b.kind == atomOngoing {
		d := ongoingOf(pr, a, a.start)
		d.OriginalText = pr.span(a.start, b.end)
		if !explicit {
			d.Confidence *= penaltyNoConnect
		}
		return d
	}

	startYear := a.year
	if a.kind == atomMonthOnly {
		startYear = b.year
		if a.month > b.month && b.month != 0 {
			startYear--
		}
	}
	d := types.ParsedDate{
		OriginalText: pr.span(a.start, b.end),
		DateType:     types.DateRange,
		StartYear:    types.IntPtr(startYear),
		EndYear:      types.IntPtr(b.year),
		StartMonth:   monthPtr(a.month),
		EndMonth:     monthPtr(b.month),
	}
	switch {
	case a.precise() && b.precise():
		d.Confidence = confRangePrecise
	case a.precise() || b.precise():
		d.Confidence = confRangeMixed
	default:
		d.Confidence = confRangeYears
	}
	d.Confidence *= penalties(a, b)
	if !explicit {
		d.Confidence *= penaltyNoConnect
	}
	return d
}

func ongoingOf(pr prepared, a atom, from int) types.ParsedDate {
	d := types.ParsedDate{
		OriginalText: pr.span(from, a.end),
		DateType:     types.DateOngoing,
		StartYear:    types.IntPtr(a.year),
		StartMonth:   monthPtr(a.month),
		IsCurrent:    true,
		Confidence:   confOngoingYear,
	}
	if a.precise() {
		d.Confidence = confOngoingPrecise
	}
	d.Confidence *= penalties(a)
	if m := reSince.FindStringIndex(pr.text[:from]); m != nil && from == a.start {
		d.OriginalText = pr.span(m[0], a.end)
	}
	return d
}

func singleOf(pr prepared, a atom) types.ParsedDate {
	d := types.ParsedDate{
		OriginalText: pr.span(a.start, a.end),
		DateType:     types.DateSingle,
		StartYear:    types.IntPtr(a.year),
		EndYear:      types.IntPtr(a.year),
		StartMonth:   monthPtr(a.month),
		EndMonth:     monthPtr(a.month),
		Confidence:   confSingleYear,
	}
	if a.precise() {
		d.Confidence = confSinglePrecise
	}
	d.Confidence *= penalties(a)
	return d
}

func penalties(atoms ...atom) float64 {
	f := 1.0
	ocr, two := false, false
	for _, a := range atoms {
		ocr = ocr || a.ocr
		two = two || a.twoDigit
	}
	if ocr {
		f *= penaltyOCR
	}
	if two {
		f *= penaltyTwoDigit
	}
	return f
}

func monthPtr(m int) *int {
	if m == 0 {
		return nil
	}
	return types.IntPtr(m)
}

// check returns a rejection reason, or "" when d is plausible.
// Single dates may be planned ends (a graduation), so they get the end window.
func (p *Parser) check(d types.ParsedDate, cy int) string {
	lo := cy - p.cfg.MaxPastYears
	startHi := cy + p.cfg.MaxFutureStart
	endHi := cy + p.cfg.MaxFutureEnd

	switch d.DateType {
	case types.DateDuration:
		return ""
	case types.DateSingle, types.DateRelative:
		if y := *d.StartYear; y < lo || y > endHi {
			return RejectOutOfWindow
		}
		return ""
	}

	if d.StartYear != nil && (*d.StartYear < lo || *d.StartYear > startHi) {
		return RejectOutOfWindow
	}
	if d.EndYear != nil && (*d.EndYear < lo || *d.EndYear > endHi) {
		return RejectOutOfWindow
	}
	if start, end := d.Start(), d.End(); start != nil && end != nil && end.Before(*start) {
		return RejectInverted
	}
	return ""
}
