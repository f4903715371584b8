package ingestion

import (
	"strings"

	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// descriptionWords is the word count above which a line reads as prose
// rather than an entry heading.
const descriptionWords = 12

// separators split an entry heading into title, organization and dates,
// strongest first.
var separators = []string{" — ", " – ", " | ", " - ", " @ ", " chez ", " at ", ", "}

// headerSections maps normalized header words to the section they open.
var headerSections = []struct {
	word    string
	section types.ContentType
}{
	{"experience", types.ContentExperience},
	{"experiences", types.ContentExperience},
	{"professionnel", types.ContentExperience},
	{"professionnelle", types.ContentExperience},
	{"professionnelles", types.ContentExperience},
	{"employment", types.ContentExperience},
	{"formation", types.ContentEducation},
	{"formations", types.ContentEducation},
	{"education", types.ContentEducation},
	{"academique", types.ContentEducation},
	{"certifications", types.ContentCertification},
	{"certification", types.ContentCertification},
	{"projets", types.ContentProject},
	{"projects", types.ContentProject},
	{"interet", types.ContentInterest},
	{"interets", types.ContentInterest},
	{"interests", types.ContentInterest},
	{"loisirs", types.ContentInterest},
	{"hobbies", types.ContentInterest},
}

// Slicer cuts plain résumé lines into candidate entries using section
// headings. It is a convenience for end-to-end use of the CLI; documents
// produced by a real extractor carry their own candidates.
type Slicer struct {
	lex   *lexicon.Lexicon
	dates *dates.Parser
}

// NewSlicer creates a Slicer.
func NewSlicer(lex *lexicon.Lexicon, dp *dates.Parser) *Slicer {
	return &Slicer{lex: lex, dates: dp}
}

type sliceState struct {
	section     types.ContentType
	active      bool
	cur         *types.Candidate
	pendingDate string
	out         []types.Candidate
}

func (st *sliceState) flush() {
	if st.cur != nil {
		st.cur.Description = strings.TrimSpace(st.cur.Description)
		st.out = append(st.out, *st.cur)
		st.cur = nil
	}
}

// Slice returns the candidates found in lines, in line order. Lines before
// the first heading, and lines under headings that open no entry section
// (skills, languages, contact), only produce candidates when they hold a date.
func (s *Slicer) Slice(lines []string) []types.Candidate {
	st := &sliceState{section: types.ContentUnknown}

	for i, raw := range lines {
		line, bullet := stripBullet(raw)
		if line == "" {
			st.flush()
			continue
		}

		if sec, ok := s.header(line); ok {
			st.flush()
			st.pendingDate = ""
			st.section = sec
			st.active = sec != types.ContentUnknown
			continue
		}

		dateOnly := s.dates.Shape(line) != dates.ShapeText && s.dates.HasDate(line)
		if dateOnly {
			if st.cur != nil && st.cur.DateText == "" {
				st.cur.DateText = line
			} else {
				st.flush()
				st.pendingDate = line
			}
			continue
		}

		if st.cur != nil && !isListSection(st.section) && (bullet || parsing.WordCount(line) > descriptionWords) {
			st.cur.Description += " " + line
			continue
		}
		if !st.active && !s.dates.HasDate(line) {
			continue
		}

		st.flush()
		c := s.entry(i, line, st.section)
		if c.DateText == "" && st.pendingDate != "" {
			c.DateText = st.pendingDate
		}
		st.pendingDate = ""
		st.cur = &c
	}
	st.flush()

	if st.out == nil {
		return []types.Candidate{}
	}
	return st.out
}

// header reports whether line is a section heading and which section it opens.
func (s *Slicer) header(line string) (types.ContentType, bool) {
	text := strings.TrimRight(strings.TrimSpace(line), ":")
	if !s.lex.Is(lexicon.SectionHeader, text) {
		return types.ContentUnknown, false
	}
	for _, tok := range parsing.Tokens(text) {
		for _, h := range headerSections {
			if tok == h.word {
				return h.section, true
			}
		}
	}
	return types.ContentUnknown, true
}

// entry builds a candidate from an entry heading line.
func (s *Slicer) entry(idx int, line string, section types.ContentType) types.Candidate {
	c := types.Candidate{
		LineIndex:  idx,
		Section:    section,
		Provenance: types.ProvenanceExtracted,
	}
	if isListSection(section) {
		c.Title = line
		if s.dates.HasDate(line) {
			c.DateText = line
		}
		return c
	}

	var texts, dateParts []string
	for _, seg := range splitHeading(line) {
		if s.dates.Shape(seg) != dates.ShapeText && s.dates.HasDate(seg) {
			dateParts = append(dateParts, seg)
			continue
		}
		texts = append(texts, seg)
	}
	if len(dateParts) > 0 {
		c.DateText = strings.Join(dateParts, " - ")
	} else if s.dates.HasDate(line) {
		c.DateText = line
	}

	switch len(texts) {
	case 0:
	case 1:
		c.Title = texts[0]
	default:
		c.Title = texts[0]
		c.Organization = texts[1]
		c.Description = strings.Join(texts[2:], ", ")
	}
	return c
}

// isListSection reports whether every line of section is its own entry.
func isListSection(section types.ContentType) bool {
	return section == types.ContentInterest || section == types.ContentCertification
}

// splitHeading splits on the strongest separator present in line.
func splitHeading(line string) []string {
	for _, sep := range separators {
		if !strings.Contains(line, sep) {
			continue
		}
		var out []string
		for _, part := range strings.Split(line, sep) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []string{strings.TrimSpace(line)}
}
