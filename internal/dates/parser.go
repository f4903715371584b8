// Package dates extracts and normalizes date expressions from résumé lines.
//
// The parser understands French and English month names, numeric forms,
// ranges, ongoing markers, durations and relative expressions. Results come
// back as a Stream ordered by descending confidence.
package dates

import (
	"strings"
	"time"
	"unicode"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Clock returns the current year.
type Clock func() int

// WallClock reads the year from the system time.
func WallClock() int {
	return time.Now().Year()
}

// FixedClock always returns year.
func FixedClock(year int) Clock {
	return func() int { return year }
}

// CueFunc reports whether a line carries a role or organization cue.
type CueFunc func(line string) bool

// Rejection reasons
const (
	RejectInverted    = "inverted"
	RejectOutOfWindow = "out_of_window"
)

// Rejection is a date expression that was recognized but filtered out.
type Rejection struct {
	Text      string `json:"text"`
	Reason    string `json:"reason"`
	LineIndex int    `json:"line_index"`
}

// Parser turns text into ParsedDate values. It is safe for concurrent use.
type Parser struct {
	cfg   config.DatesConfig
	clock Clock
	cues  CueFunc
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the clock used to resolve the current year.
func WithClock(c Clock) Option {
	return func(p *Parser) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithCues enables window confidence adjustments driven by cue lines.
func WithCues(f CueFunc) Option {
	return func(p *Parser) {
		p.cues = f
	}
}

// NewParser creates a parser from the dates configuration.
func NewParser(cfg config.DatesConfig, opts ...Option) *Parser {
	p := &Parser{cfg: cfg, clock: WallClock}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CurrentYear is the reference year for validity windows and two-digit years.
func (p *Parser) CurrentYear() int {
	if p.cfg.CurrentYear > 0 {
		return p.cfg.CurrentYear
	}
	return p.clock()
}

// Parse extracts the dates of a single text span.
func (p *Parser) Parse(text string) *Stream {
	found, rejected := p.parseLine(text, -1)
	return newStream(dedup(found, p.cfg.DedupOverlap), rejected)
}

// ParseWindow extracts dates from lines[target] and its neighbours within
// WindowRadius. Dates farther from the target, or far from any role or
// organization cue, lose confidence.
func (p *Parser) ParseWindow(lines []string, target int) *Stream {
	window := Window(lines, target, p.cfg.WindowRadius)
	if len(window) == 0 {
		return newStream(nil, nil)
	}

	var cueLines []int
	if p.cues != nil {
		for _, wl := range window {
			if p.cues(wl.Text) {
				cueLines = append(cueLines, wl.Index)
			}
		}
	}

	var found []types.ParsedDate
	var rejected []Rejection
	for _, wl := range window {
		dates, rej := p.parseLine(wl.Text, wl.Index)
		rejected = append(rejected, rej...)
		for _, d := range dates {
			d.Confidence *= 1 - 0.1*float64(wl.Distance)
			if p.cues != nil {
				d.Confidence += p.cueAdjustment(wl.Index, cueLines)
			}
			d.Confidence = types.ClampConfidence(d.Confidence)
			if d.Confidence > 0 {
				found = append(found, d)
			}
		}
	}
	return newStream(dedup(found, p.cfg.DedupOverlap), rejected)
}

// cueAdjustment is the full boost for a cue on the same line, halved for
// every line of distance, or the penalty when the window has no cue.
func (p *Parser) cueAdjustment(line int, cueLines []int) float64 {
	if len(cueLines) == 0 {
		return -p.cfg.ContextPenalty
	}
	nearest := -1
	for _, c := range cueLines {
		d := abs(c - line)
		if nearest < 0 || d < nearest {
			nearest = d
		}
	}
	return p.cfg.ContextBoost / float64(int(1)<<nearest)
}

// Inverted reports whether text holds a range whose end precedes its start.
func (p *Parser) Inverted(text string) bool {
	_, rejected := p.parseLine(text, -1)
	for _, r := range rejected {
		if r.Reason == RejectInverted {
			return true
		}
	}
	return false
}

// HasDate reports whether the line holds at least one valid date expression.
func (p *Parser) HasDate(line string) bool {
	found, _ := p.parseLine(line, -1)
	return len(found) > 0
}

// Best returns the most confident date of text.
func (p *Parser) Best(text string) (types.ParsedDate, bool) {
	return p.Parse(text).Next()
}

// Shape describes whether a string is made of date material only.
type Shape int

const (
	// ShapeText has words beyond dates
	ShapeText Shape = iota
	// ShapeNumeric is digits, numeric dates and punctuation only ("30/01/17", "2019 - 2021")
	ShapeNumeric
	// ShapeMonthYear is a named month with a year and nothing else ("Janvier 2023")
	ShapeMonthYear
)

// Shape classifies s. Titles and organizations of either date shape are noise.
func (p *Parser) Shape(s string) Shape {
	pr := prepare(s, p.cfg.OCRTolerance)
	if strings.TrimSpace(pr.text) == "" {
		return ShapeText
	}
	atoms := scan(pr, p.cfg.CenturyCutoff, p.CurrentYear())

	rest := []byte(pr.text)
	named := false
	for _, a := range atoms {
		if a.kind == atomDuration || a.kind == atomRelative {
			continue
		}
		if a.kind == atomNamedMonth || a.kind == atomMonthOnly {
			named = true
		}
		for k := a.start; k < a.end; k++ {
			rest[k] = ' '
		}
	}
	remaining := reFillerWords.ReplaceAllString(string(rest), " ")
	for _, r := range remaining {
		if unicode.IsLetter(r) {
			return ShapeText
		}
	}
	if named {
		return ShapeMonthYear
	}
	return ShapeNumeric
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
