package parsing

import (
	"strings"
	"unicode"
)

// TokenOverlap returns the Jaccard overlap of the normalized token sets of a and b.
func TokenOverlap(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// LexicalDiversity returns unique tokens / total tokens, or 1 for empty input.
func LexicalDiversity(s string) float64 {
	toks := Tokens(s)
	if len(toks) == 0 {
		return 1
	}
	return float64(len(tokenSet(s))) / float64(len(toks))
}

// HasRepeatedCharacters flags filler like "-----", "xxxx" or "aaaaaa".
// Digits are ignored so years and amounts never trigger it.
func HasRepeatedCharacters(s string) bool {
	compact := strings.Join(strings.Fields(s), "")
	runes := []rune(compact)
	if len(runes) == 0 {
		return false
	}

	distinct := make(map[rune]bool)
	for _, r := range runes {
		distinct[unicode.ToLower(r)] = true
	}
	if len(runes) >= 3 && len(distinct) == 1 && !unicode.IsDigit(runes[0]) {
		return true
	}

	run := 1
	for i := 1; i < len(runes); i++ {
		if unicode.ToLower(runes[i]) == unicode.ToLower(runes[i-1]) && !unicode.IsDigit(runes[i]) {
			run++
			if run >= 4 {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}

// LetterRatio returns the share of letters among non-space runes.
func LetterRatio(s string) float64 {
	letters, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokens(s) {
		set[tok] = true
	}
	return set
}
