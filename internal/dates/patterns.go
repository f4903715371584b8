package dates

import (
	"regexp"
	"slices"
	"strings"
)

// months maps folded French and English month names and abbreviations.
var months = map[string]int{
	"janvier": 1, "janv": 1, "january": 1, "jan": 1,
	"fevrier": 2, "fevr": 2, "fev": 2, "february": 2, "feb": 2,
	"mars": 3, "march": 3, "mar": 3,
	"avril": 4, "avr": 4, "april": 4, "apr": 4,
	"mai": 5, "may": 5,
	"juin": 6, "june": 6, "jun": 6,
	"juillet": 7, "juil": 7, "july": 7, "jul": 7,
	"aout": 8, "august": 8, "aug": 8,
	"septembre": 9, "september": 9, "sept": 9, "sep": 9,
	"octobre": 10, "october": 10, "oct": 10,
	"novembre": 11, "november": 11, "nov": 11,
	"decembre": 12, "december": 12, "dec": 12,
}

// ongoingTokens mark an open end. Apostrophes are already spaces here.
var ongoingTokens = []string{
	"present", "actuel", "actuelle", "actuellement", "aujourd hui",
	"current", "currently", "now", "a ce jour", "ce jour", "en cours",
	"today", "to date", "ongoing", "maintenant",
}

// relativeOffsets maps relative expressions to a year offset from now.
var relativeOffsets = map[string]int{
	"l an dernier":      -1,
	"l annee derniere":  -1,
	"l annee passee":    -1,
	"last year":         -1,
	"cette annee":       0,
	"this year":         0,
	"l an prochain":     1,
	"l annee prochaine": 1,
	"next year":         1,
}

var (
	monthAlt    = alternation(keys(months))
	ongoingAlt  = alternation(ongoingTokens)
	relativeAlt = alternation(keys(relativeOffsets))

	reDMY = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})\b`)
	reISO = regexp.MustCompile(`\b((?:19|20)\d{2})[\-/.](0?[1-9]|1[0-2])\b`)
	// reMonthLead is a month and separator standing right before a year,
	// as in the first half of "09/2022-10/2022"; an ISO match there would
	// split the month from its year.
	reMonthLead  = regexp.MustCompile(`(?:^|[^\d/.\-])(?:0?[1-9]|1[0-2])[/.\-]$`)
	reMonthYear  = regexp.MustCompile(`\b(0?[1-9]|1[0-2])[/.\-]((?:19|20)\d{2}|\d{2})\b`)
	reNamedMonth = regexp.MustCompile(`\b(` + monthAlt + `)\b\.?\s*(?:de\s+|of\s+|,\s*)?((?:19|20)\d{2}|\d{2})\b`)
	reMonthOnly  = regexp.MustCompile(`\b(` + monthAlt + `)\b\.?`)
	reYear       = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	reOngoing    = regexp.MustCompile(`\b(?:` + ongoingAlt + `)\b`)
	reDuration   = regexp.MustCompile(`\b(\d{1,2})\s*(mois|months?|ans?|annees?|years?|yrs?|semaines?|weeks?)\b`)
	reRelative   = regexp.MustCompile(`\b(?:` + relativeAlt + `)\b`)

	// reConnector matches what may sit between the two ends of a range.
	reConnector = regexp.MustCompile(`^\s*(?:-+|a|au|to|until|till|through|thru|jusqu a|jusqu au|jusqu en|/)\s*$`)
	// reSince matches an opening that makes a lone date ongoing.
	reSince = regexp.MustCompile(`(?:^|\s)(?:depuis|since|des|starting|a partir de|from)\s*$`)
)

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// alternation builds a regexp alternation with longer terms first so that
// "septembre" wins over "sept".
func alternation(terms []string) string {
	sorted := slices.Clone(terms)
	slices.SortFunc(sorted, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	for i, t := range sorted {
		sorted[i] = strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`)
	}
	return strings.Join(sorted, "|")
}

// durationMonths converts a duration amount and unit to months.
func durationMonths(n int, unit string) int {
	switch {
	case strings.HasPrefix(unit, "mois"), strings.HasPrefix(unit, "month"):
		return n
	case strings.HasPrefix(unit, "semaine"), strings.HasPrefix(unit, "week"):
		return (n + 3) / 4
	default:
		return n * 12
	}
}

// reFillerWords are the words allowed around dates in a date-only string.
var reFillerWords = regexp.MustCompile(`\b(?:a|au|to|until|till|through|thru|jusqu|en|depuis|since|des|from|de|du|le|the|et|and)\b`)
