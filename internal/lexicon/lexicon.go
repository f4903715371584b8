// Package lexicon provides the read-only word lists used to classify résumé fragments.
// Lists are stored as JSON files and embedded at compile time; a loaded Lexicon
// is immutable and safe to share between goroutines.
package lexicon

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"

	"github.com/jonathan/resume-sifter/internal/parsing"
)

//go:embed *.json
var lexiconFiles embed.FS

// Kind names one word list.
type Kind string

// Word lists, keyed by their JSON name.
const (
	School                    Kind = "school"
	Employment                Kind = "employment"
	StrongEmployment          Kind = "strong_employment"
	ActionVerb                Kind = "action_verbs"
	Role                      Kind = "roles"
	Education                 Kind = "education"
	Degree                    Kind = "degree"
	Internship                Kind = "internship"
	LanguageCertification     Kind = "language_certification"
	ProfessionalCertification Kind = "professional_certification"
	Project                   Kind = "project"
	AcademicProject           Kind = "academic_project"
	Interest                  Kind = "interest"
	SectionHeader             Kind = "section_header"
	OrgAcronym                Kind = "org_acronym"
	TitleAcronym              Kind = "title_acronym"
	Placeholder               Kind = "placeholder"
	OrgSuffix                 Kind = "org_suffix"
)

// RequiredKinds must all be present and non-empty for a lexicon to load.
var RequiredKinds = []Kind{
	School, Employment, StrongEmployment, ActionVerb, Role, Education, Degree, Internship,
	LanguageCertification, ProfessionalCertification, Project, AcademicProject, Interest,
	SectionHeader, OrgAcronym, TitleAcronym, Placeholder, OrgSuffix,
}

// Lexicon is an immutable set of normalized word lists.
type Lexicon struct {
	lists map[Kind][]string
	sets  map[Kind]map[string]bool
}

// Load reads the embedded lexicon files.
func Load() (*Lexicon, error) {
	return LoadFS(lexiconFiles)
}

// MustLoad loads the embedded lexicon, panicking on failure.
// Use this only where the embedded files are known to be intact (tests, init).
func MustLoad() *Lexicon {
	lex, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load lexicon: %v", err))
	}
	return lex
}

// LoadFS reads every *.json file at the root of fsys and merges their lists.
// Each file is an object mapping list names to arrays of terms.
func LoadFS(fsys fs.FS) (*Lexicon, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, &LoadError{Message: "failed to list lexicon files", Cause: err}
	}
	slices.Sort(names)

	raw := make(map[Kind][]string)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("failed to read lexicon file %s", name), Cause: err}
		}
		var lists map[string][]string
		if err := json.Unmarshal(data, &lists); err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("failed to parse lexicon file %s", name), Cause: err}
		}
		for key, terms := range lists {
			raw[Kind(key)] = append(raw[Kind(key)], terms...)
		}
	}

	return New(raw)
}

// New builds a Lexicon from raw lists, normalizing and deduplicating terms.
// It fails when a required list is missing or empty.
func New(raw map[Kind][]string) (*Lexicon, error) {
	lex := &Lexicon{
		lists: make(map[Kind][]string, len(raw)),
		sets:  make(map[Kind]map[string]bool, len(raw)),
	}
	for kind, terms := range raw {
		set := make(map[string]bool, len(terms))
		list := make([]string, 0, len(terms))
		for _, term := range terms {
			norm := parsing.Normalize(term)
			if norm == "" || set[norm] {
				continue
			}
			set[norm] = true
			list = append(list, norm)
		}
		// longest first so multi-word terms win over their prefixes
		slices.SortStableFunc(list, func(a, b string) int { return len(b) - len(a) })
		lex.lists[kind] = list
		lex.sets[kind] = set
	}

	var missing []string
	for _, kind := range RequiredKinds {
		if len(lex.lists[kind]) == 0 {
			missing = append(missing, string(kind))
		}
	}
	if len(missing) > 0 {
		return nil, &MissingListError{Kinds: missing}
	}
	return lex, nil
}

// Terms returns a copy of the normalized terms of kind.
func (l *Lexicon) Terms(kind Kind) []string {
	return slices.Clone(l.lists[kind])
}

// Is reports whether the whole of text, once normalized, is a term of kind.
func (l *Lexicon) Is(kind Kind, text string) bool {
	return l.sets[kind][parsing.Normalize(text)]
}

// Has reports whether text contains at least one term of kind on word boundaries.
func (l *Lexicon) Has(kind Kind, text string) bool {
	return l.HasNormalized(kind, parsing.Normalize(text))
}

// HasNormalized is Has for text that is already normalized.
func (l *Lexicon) HasNormalized(kind Kind, norm string) bool {
	for _, term := range l.lists[kind] {
		if parsing.ContainsTerm(norm, term) {
			return true
		}
	}
	return false
}

// Matches returns every term of kind found in text, longest terms first.
func (l *Lexicon) Matches(kind Kind, text string) []string {
	return l.MatchesNormalized(kind, parsing.Normalize(text))
}

// MatchesNormalized is Matches for text that is already normalized.
func (l *Lexicon) MatchesNormalized(kind Kind, norm string) []string {
	var out []string
	for _, term := range l.lists[kind] {
		if parsing.ContainsTerm(norm, term) {
			out = append(out, term)
		}
	}
	return out
}

// Count returns how many distinct terms of kind occur in text.
func (l *Lexicon) Count(kind Kind, text string) int {
	return len(l.Matches(kind, text))
}
