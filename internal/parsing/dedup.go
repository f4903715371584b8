package parsing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jonathan/resume-sifter/internal/types"
)

// DedupKey builds the normalized (title, organization, start, end) key.
func DedupKey(title, organization string, start, end *types.YearMonth) string {
	parts := []string{Normalize(title), Normalize(organization), "", ""}
	if start != nil {
		parts[2] = start.String()
	}
	if end != nil {
		parts[3] = end.String()
	}
	return strings.Join(parts, "|")
}

// RecordKey returns the dedup key of a record.
func RecordKey(r types.Record) string {
	return DedupKey(r.Title, r.Organization, r.StartDate, r.EndDate)
}

// Deduplicate removes records sharing a dedup key, keeping the highest
// confidence one (earliest line on ties). Survivors keep their relative order.
// Returns the survivors and the number removed.
func Deduplicate(records []types.Record) ([]types.Record, int) {
	if len(records) < 2 {
		return records, 0
	}

	best := make(map[string]int, len(records))
	for i, r := range records {
		key := RecordKey(r)
		j, seen := best[key]
		if !seen || better(r, records[j]) {
			best[key] = i
		}
	}

	keep := make([]int, 0, len(best))
	for _, i := range best {
		keep = append(keep, i)
	}
	slices.Sort(keep)

	out := make([]types.Record, 0, len(keep))
	for _, i := range keep {
		out = append(out, records[i])
	}
	return out, len(records) - len(out)
}

// SortRecords orders records by line index, then title, for stable output.
func SortRecords(records []types.Record) {
	slices.SortStableFunc(records, func(a, b types.Record) int {
		if c := cmp.Compare(a.LineIndex, b.LineIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
}

func better(a, b types.Record) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.LineIndex < b.LineIndex
}
