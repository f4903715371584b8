package dates

import (
	"cmp"
	"slices"
)

// WindowLine is one line of a context window.
type WindowLine struct {
	Index    int
	Distance int
	Text     string
}

// Window returns lines[target-radius : target+radius+1], clamped to the
// document, ordered by distance from target and then by index. The target
// comes first. An out-of-range target yields nil.
func Window(lines []string, target, radius int) []WindowLine {
	if target < 0 || target >= len(lines) || radius < 0 {
		return nil
	}
	out := []WindowLine{{Index: target, Text: lines[target]}}
	for d := 1; d <= radius; d++ {
		if i := target - d; i >= 0 {
			out = append(out, WindowLine{Index: i, Distance: d, Text: lines[i]})
		}
		if i := target + d; i < len(lines) {
			out = append(out, WindowLine{Index: i, Distance: d, Text: lines[i]})
		}
	}
	return out
}

// Texts returns the window lines in document order.
func Texts(window []WindowLine) []string {
	sorted := slices.Clone(window)
	slices.SortFunc(sorted, func(a, b WindowLine) int { return cmp.Compare(a.Index, b.Index) })
	out := make([]string, len(sorted))
	for i, wl := range sorted {
		out[i] = wl.Text
	}
	return out
}
