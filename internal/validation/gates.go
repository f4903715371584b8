package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

const (
	// maxAcronymLetters bounds what counts as a short all-caps acronym
	maxAcronymLetters = 4
	// minDiversityTokens is the shortest text the diversity check applies to
	minDiversityTokens = 5
)

// prefilter rejects content that cannot be an experience at all.
func (v *Validator) prefilter(c types.Candidate) string {
	title := strings.TrimSpace(c.Title)
	org := strings.TrimSpace(c.Organization)

	if title == "" && org == "" && strings.TrimSpace(c.Description) == "" {
		return ReasonEmptyContent
	}
	if (title != "" && v.lex.Is(lexicon.Placeholder, title)) || (org != "" && v.lex.Is(lexicon.Placeholder, org)) {
		return ReasonPlaceholderContent
	}
	if parsing.HasRepeatedCharacters(title) || parsing.HasRepeatedCharacters(org) {
		return ReasonRepeatedCharacters
	}
	if title != "" && org != "" && parsing.TokenOverlap(title, org) > v.cfg.TitleOrgOverlap {
		return ReasonTitleOrgDuplicate
	}
	if toks := parsing.Tokens(c.Text()); len(toks) >= minDiversityTokens &&
		parsing.LexicalDiversity(c.Text()) < v.cfg.MinLexicalDiversity {
		return ReasonLowLexicalDiversity
	}
	return ""
}

// organizationGate reports whether org earns the organization points.
// An empty organization earns nothing but is not a rejection.
func (v *Validator) organizationGate(org string, res *types.ValidationResult) bool {
	org = strings.TrimSpace(org)
	if org == "" {
		return false
	}
	reason := ""
	switch {
	case parsing.IsContact(org):
		reason = ReasonOrgIsContact
	case v.dates.Shape(org) != dates.ShapeText:
		reason = ReasonOrgIsDate
	case v.lex.Is(lexicon.SectionHeader, org):
		reason = ReasonOrgIsSectionHeader
	case v.lex.Has(lexicon.Education, org):
		reason = ReasonOrgIsEducation
	case parsing.IsUpperAcronym(org, maxAcronymLetters) && !v.lex.Is(lexicon.OrgAcronym, org):
		reason = ReasonOrgIsUnlistedAcronym
	}
	if reason != "" {
		res.AddReason(reason)
		return false
	}
	return true
}

// titleGate reports whether title earns the title points.
func (v *Validator) titleGate(title string, res *types.ValidationResult) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	hasRole := v.lex.Has(lexicon.Role, title)
	listedAcronym := v.lex.Is(lexicon.TitleAcronym, title)

	reason := ""
	switch shape := v.dates.Shape(title); {
	case shape == dates.ShapeNumeric:
		reason = ReasonTitleIsNumericOrDate
	case shape == dates.ShapeMonthYear:
		reason = ReasonTitleIsMonthYear
	case v.lex.Has(lexicon.Education, title) && !hasRole:
		reason = ReasonTitleIsEducation
	case parsing.IsUpperAcronym(title, maxAcronymLetters) && !listedAcronym:
		reason = ReasonTitleIsUnlistedAcronym
	case utf8.RuneCountInString(title) < v.cfg.MinTitleLength && !hasRole && !listedAcronym:
		reason = ReasonTitleTooShortNoRole
	}
	if reason != "" {
		res.AddReason(reason)
		return false
	}
	return true
}
