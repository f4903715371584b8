// Package parsing provides the text normalization, similarity and deduplication
// helpers shared by every stage of the sifter.
package parsing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dashReplacer maps unicode dash variants to an ASCII hyphen
var dashReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"﹘", "-",
	"﹣", "-",
	"－", "-",
)

// ligatureReplacer expands ligatures that NFD does not decompose
var ligatureReplacer = strings.NewReplacer(
	"œ", "oe", "Œ", "OE",
	"æ", "ae", "Æ", "AE",
	"ß", "ss",
)

// NormalizeDashes replaces every unicode dash variant with '-'.
func NormalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}

// FoldAccents strips combining marks: "École" → "Ecole".
func FoldAccents(s string) string {
	s = ligatureReplacer.Replace(s)
	// transform chains carry state, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lowercases, folds accents and reduces every non-alphanumeric run
// to a single space. The result is suitable for lexicon matching and keys.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(FoldAccents(s))

	var sb strings.Builder
	sb.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			sb.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return sb.String()
}

// Tokens returns the normalized words of s.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// ContainsTerm reports whether the normalized term occurs in normalized text
// on word boundaries. Both arguments must already be normalized.
func ContainsTerm(normText, normTerm string) bool {
	if normTerm == "" || normText == "" {
		return false
	}
	if normText == normTerm {
		return true
	}
	return strings.Contains(" "+normText+" ", " "+normTerm+" ")
}

// WordCount counts whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// IsUpperAcronym reports whether s is a short all-capitals token such as "ABC" or "R&D".
// maxLen bounds the number of letters.
func IsUpperAcronym(s string, maxLen int) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, ' ') {
		return false
	}
	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			letters++
		case r == '&' || r == '.' || r == '-':
		default:
			return false
		}
	}
	return letters >= 2 && letters <= maxLen
}
