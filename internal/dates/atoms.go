package dates

import (
	"slices"
	"strconv"
	"strings"
)

type atomKind int

const (
	atomDMY atomKind = iota
	atomISO
	atomMonthYear
	atomNamedMonth
	atomMonthOnly
	atomYear
	atomOngoing
	atomDuration
	atomRelative
)

// atom is one date building block found in a prepared line.
type atom struct {
	kind       atomKind
	start, end int
	year       int
	month      int
	months     int // durations only
	twoDigit   bool
	ocr        bool
}

// precise reports whether the atom carries a month.
func (a atom) precise() bool { return a.month != 0 }

// scan extracts the non-overlapping atoms of a prepared line, highest
// priority pattern first, sorted by position.
func scan(p prepared, cutoff int, currentYear int) []atom {
	var out []atom
	taken := func(s, e int) bool {
		for _, a := range out {
			if s < a.end && a.start < e {
				return true
			}
		}
		return false
	}
	add := func(a atom) {
		a.ocr = p.ocrTouched(a.start, a.end)
		out = append(out, a)
	}
	text := p.text

	for _, m := range reDMY.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		day, month := atoi(text[m[2]:m[3]]), atoi(text[m[4]:m[5]])
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		year, two := expandYear(text[m[6]:m[7]], cutoff)
		add(atom{kind: atomDMY, start: m[0], end: m[1], year: year, month: month, twoDigit: two})
	}
	for _, m := range reISO.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) || reMonthLead.MatchString(text[:m[0]]) {
			continue
		}
		add(atom{kind: atomISO, start: m[0], end: m[1], year: atoi(text[m[2]:m[3]]), month: atoi(text[m[4]:m[5]])})
	}
	for _, m := range reMonthYear.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		year, two := expandYear(text[m[4]:m[5]], cutoff)
		add(atom{kind: atomMonthYear, start: m[0], end: m[1], year: year, month: atoi(text[m[2]:m[3]]), twoDigit: two})
	}
	for _, m := range reNamedMonth.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		year, two := expandYear(text[m[4]:m[5]], cutoff)
		add(atom{kind: atomNamedMonth, start: m[0], end: m[1], year: year, month: months[text[m[2]:m[3]]], twoDigit: two})
	}
	for _, m := range reRelative.FindAllStringIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		phrase := strings.Join(strings.Fields(text[m[0]:m[1]]), " ")
		add(atom{kind: atomRelative, start: m[0], end: m[1], year: currentYear + relativeOffsets[phrase]})
	}
	for _, m := range reMonthOnly.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		add(atom{kind: atomMonthOnly, start: m[0], end: m[1], month: months[text[m[2]:m[3]]]})
	}
	for _, m := range reYear.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		add(atom{kind: atomYear, start: m[0], end: m[1], year: atoi(text[m[2]:m[3]])})
	}
	for _, m := range reOngoing.FindAllStringIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		add(atom{kind: atomOngoing, start: m[0], end: m[1]})
	}
	for _, m := range reDuration.FindAllStringSubmatchIndex(text, -1) {
		if taken(m[0], m[1]) {
			continue
		}
		n := atoi(text[m[2]:m[3]])
		if n == 0 {
			continue
		}
		add(atom{kind: atomDuration, start: m[0], end: m[1], months: durationMonths(n, text[m[4]:m[5]])})
	}

	slices.SortFunc(out, func(a, b atom) int { return a.start - b.start })
	return out
}

// expandYear turns a 2 or 4 digit year string into a full year.
// Two-digit years at or below cutoff are 20yy, the rest 19yy.
func expandYear(s string, cutoff int) (int, bool) {
	y := atoi(s)
	if len(s) != 2 {
		return y, false
	}
	if y <= cutoff {
		return 2000 + y, true
	}
	return 1900 + y, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// isPoint reports whether the atom can be a range end point with a year.
func (a atom) isPoint() bool {
	switch a.kind {
	case atomDMY, atomISO, atomMonthYear, atomNamedMonth, atomYear:
		return true
	}
	return false
}
