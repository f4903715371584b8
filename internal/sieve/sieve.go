// Package sieve looks around a candidate for a better organization name and
// weighs whether a school-like organization should send it to education.
package sieve

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Match sources
const (
	SourceEntity    = "entity"
	SourceSuffix    = "legal_suffix"
	SourceMarker    = "marker"
	SourceSeparator = "separator"
)

const (
	maxAcronymLetters = 4
	maxNameWords      = 6
	minLetterRatio    = 0.5
)

const word = `\p{Lu}[\p{L}\p{N}&'.\-]*`

var (
	// reMarker captures the name after "chez", "at" or "@"
	reMarker = regexp.MustCompile(`(?:^|\s)(?:[Cc]hez|[Aa]t|@)\s+(` + word + `(?:\s+(?:(?:de|du|des|of|&)\s+)?` + word + `){0,4})`)
	// reSeparator splits a line on pipes, bullets, spaced dashes and commas
	reSeparator = regexp.MustCompile(`\s+-\s+|\s*[|•·]\s*|,\s+|[()]`)
)

// Match is an organization found near a candidate.
type Match struct {
	Name            string  `json:"name"`
	LineIndex       int     `json:"line_index"`
	Distance        int     `json:"distance"`
	Confidence      float64 `json:"confidence"`
	Source          string  `json:"source"`
	IsSchool        bool    `json:"is_school"`
	EmploymentScore float64 `json:"employment_score,omitempty"`

	order int
}

// Sieve searches line windows for organizations. It is read-only after
// construction and safe for concurrent use.
type Sieve struct {
	cfg config.SieveConfig
	lex *lexicon.Lexicon
}

// New creates a Sieve.
func New(cfg config.SieveConfig, lex *lexicon.Lexicon) *Sieve {
	return &Sieve{cfg: cfg, lex: lex}
}

// FindNearestValidOrg returns the best organization within radius lines of
// target. School names survive only with strong employment context around
// them. Ties on distance go to the more confident source, then the earlier line.
func (s *Sieve) FindNearestValidOrg(lines []string, target, radius int, hints []types.EntityHint) (Match, bool) {
	return s.find(lines, target, radius, hints, "")
}

func (s *Sieve) find(lines []string, target, radius int, hints []types.EntityHint, exclude string) (Match, bool) {
	excludeNorm := parsing.Normalize(exclude)
	var found []Match
	seen := make(map[string]bool)

	for _, wl := range dates.Window(lines, target, radius) {
		for _, m := range s.candidatesOn(wl, hints) {
			key := parsing.Normalize(m.Name)
			if key == "" || key == excludeNorm || seen[key] || s.suspect(m.Name) {
				continue
			}
			if m.IsSchool {
				m.EmploymentScore = s.EmploymentContextScore(lines, m.LineIndex, s.cfg.ContextRadius)
				if m.EmploymentScore <= s.cfg.EmploymentThreshold {
					continue
				}
			}
			seen[key] = true
			found = append(found, m)
		}
	}
	if len(found) == 0 {
		return Match{}, false
	}

	slices.SortStableFunc(found, func(a, b Match) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		if c := cmp.Compare(a.LineIndex, b.LineIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	return found[0], true
}

// candidatesOn lists entity hints and lexical matches of one window line.
func (s *Sieve) candidatesOn(wl dates.WindowLine, hints []types.EntityHint) []Match {
	var out []Match
	add := func(name, source string, conf float64, school bool) {
		name = cleanName(name)
		if name == "" {
			return
		}
		out = append(out, Match{
			Name:       name,
			LineIndex:  wl.Index,
			Distance:   wl.Distance,
			Confidence: conf,
			Source:     source,
			IsSchool:   school || s.IsSchool(name),
			order:      len(out),
		})
	}

	for _, h := range hints {
		if h.LineIdx != wl.Index {
			continue
		}
		switch h.Label {
		case types.EntityOrg:
			add(h.Text, SourceEntity, h.Confidence, false)
		case types.EntitySchool:
			add(h.Text, SourceEntity, h.Confidence, true)
		}
	}

	line := parsing.NormalizeDashes(wl.Text)
	lexConf := s.cfg.LexicalConfidence
	segments := reSeparator.Split(line, -1)

	for _, seg := range segments {
		if name := s.suffixedName(strings.Fields(seg)); name != "" {
			add(name, SourceSuffix, lexConf, false)
		}
	}
	for _, m := range reMarker.FindAllStringSubmatch(line, -1) {
		add(m[1], SourceMarker, lexConf, false)
	}
	if len(segments) > 1 {
		for _, seg := range segments {
			if seg = strings.TrimSpace(seg); s.looksLikeName(seg) {
				add(seg, SourceSeparator, lexConf, false)
			}
		}
	}
	return out
}

// suffixedName returns the run of capitalized words ending in a legal or
// corporate suffix: "Stage chez Renault Group" gives "Renault Group".
func (s *Sieve) suffixedName(fields []string) string {
	n := len(fields)
	if n < 2 || !s.lex.Is(lexicon.OrgSuffix, fields[n-1]) {
		return ""
	}
	start := n - 1
	for start > 0 {
		f := fields[start-1]
		if f != "&" && !startsUpper(f) {
			break
		}
		start--
	}
	if start == n-1 {
		return ""
	}
	return strings.Join(fields[start:], " ")
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r) || unicode.IsDigit(r)
	}
	return false
}

// looksLikeName accepts a capitalized, short segment that is not a role or contract term.
func (s *Sieve) looksLikeName(seg string) bool {
	if seg == "" || len(strings.Fields(seg)) > maxNameWords {
		return false
	}
	if !startsUpper(seg) {
		return false
	}
	return !s.lex.Has(lexicon.Role, seg) && !s.lex.Has(lexicon.Internship, seg) && !s.lex.Is(lexicon.Employment, seg)
}

// plausible rejects contact details, headers, placeholders and noise.
func (s *Sieve) plausible(name string) bool {
	switch {
	case parsing.IsContact(name):
		return false
	case parsing.LetterRatio(name) < minLetterRatio:
		return false
	case s.lex.Is(lexicon.SectionHeader, name), s.lex.Is(lexicon.Placeholder, name):
		return false
	}
	return true
}

// suspect reports whether a current organization value is unusable.
func (s *Sieve) suspect(org string) bool {
	if !s.plausible(org) {
		return true
	}
	return parsing.IsUpperAcronym(org, maxAcronymLetters) && !s.lex.Is(lexicon.OrgAcronym, org)
}

// IsSchool reports whether name matches the school lexicon.
func (s *Sieve) IsSchool(name string) bool {
	return s.lex.Has(lexicon.School, name)
}

func cleanName(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) && r != '&' && r != '.'
	})
}
