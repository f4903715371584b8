package sieve

import (
	"strings"

	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// EmploymentContextScore measures employment keyword and action verb density
// in the lines within radius of center, scaled into [0,1].
func (s *Sieve) EmploymentContextScore(lines []string, center, radius int) float64 {
	keywords, verbs, words := s.contextCounts(lines, center, radius)
	if words == 0 {
		return 0
	}
	raw := (float64(keywords)*s.cfg.KeywordWeight + float64(verbs)*s.cfg.VerbWeight) / float64(words)
	return types.ClampConfidence(raw * s.cfg.ScoreScale)
}

func (s *Sieve) contextCounts(lines []string, center, radius int) (keywords, verbs, words int) {
	window := dates.Window(lines, center, radius)
	if len(window) == 0 {
		return 0, 0, 0
	}
	norm := parsing.Normalize(strings.Join(dates.Texts(window), " "))
	keywords = len(s.lex.MatchesNormalized(lexicon.Employment, norm))
	verbs = len(s.lex.MatchesNormalized(lexicon.ActionVerb, norm))
	return keywords, verbs, parsing.WordCount(norm)
}
