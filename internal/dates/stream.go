package dates

import (
	"cmp"
	"iter"
	"slices"

	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Stream yields parsed dates by descending confidence. It is finite and
// cannot be restarted: once drained it stays drained. A Stream is not safe
// for concurrent use.
type Stream struct {
	items    []types.ParsedDate
	pos      int
	rejected []Rejection
}

func newStream(items []types.ParsedDate, rejected []Rejection) *Stream {
	// stable keeps line and position order between equal confidences
	slices.SortStableFunc(items, func(a, b types.ParsedDate) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return &Stream{items: items, rejected: rejected}
}

// Next returns the next date, or false once the stream is drained.
func (s *Stream) Next() (types.ParsedDate, bool) {
	if s.pos >= len(s.items) {
		return types.ParsedDate{}, false
	}
	d := s.items[s.pos]
	s.pos++
	return d, true
}

// All ranges over the remaining dates, consuming them.
func (s *Stream) All() iter.Seq[types.ParsedDate] {
	return func(yield func(types.ParsedDate) bool) {
		for {
			d, ok := s.Next()
			if !ok || !yield(d) {
				return
			}
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream) Collect() []types.ParsedDate {
	return slices.Collect(s.All())
}

// Remaining is the number of dates not yet consumed.
func (s *Stream) Remaining() int {
	return len(s.items) - s.pos
}

// Rejections lists expressions that were recognized and then filtered out.
// It does not consume the stream.
func (s *Stream) Rejections() []Rejection {
	return slices.Clone(s.rejected)
}

// Inverted reports whether any rejection was an inverted range.
func (s *Stream) Inverted() bool {
	return slices.ContainsFunc(s.rejected, func(r Rejection) bool { return r.Reason == RejectInverted })
}

// dedup keeps, per line, the most confident of any dates sharing a
// start/end year pair or mostly the same tokens. Input order is kept.
func dedup(items []types.ParsedDate, overlap float64) []types.ParsedDate {
	if len(items) < 2 {
		return items
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(items[b].Confidence, items[a].Confidence)
	})

	drop := make([]bool, len(items))
	for oi, i := range order {
		if drop[i] {
			continue
		}
		for _, j := range order[oi+1:] {
			if drop[j] || items[i].LineIndex != items[j].LineIndex {
				continue
			}
			if sameYears(items[i], items[j]) ||
				parsing.TokenOverlap(items[i].OriginalText, items[j].OriginalText) >= overlap {
				drop[j] = true
			}
		}
	}

	out := make([]types.ParsedDate, 0, len(items))
	for i, d := range items {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return out
}

func sameYears(a, b types.ParsedDate) bool {
	if a.StartYear == nil && a.EndYear == nil {
		return false
	}
	return eqPtr(a.StartYear, b.StartYear) && eqPtr(a.EndYear, b.EndYear)
}

func eqPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
