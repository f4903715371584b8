package dates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/types"
)

func newTestParser(opts ...Option) *Parser {
	opts = append([]Option{WithClock(FixedClock(2026))}, opts...)
	return NewParser(config.Defaults().Dates, opts...)
}

func ym(d types.ParsedDate) (start, end string) {
	if s := d.Start(); s != nil {
		start = s.String()
	}
	if e := d.End(); e != nil {
		end = e.String()
	}
	return start, end
}

func TestParse_Shapes(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name      string
		text      string
		dateType  types.DateType
		start     string
		end       string
		isCurrent bool
	}{
		{"day month two-digit year", "30/01/17", types.DateSingle, "2017-01", "2017-01", false},
		{"numeric month range", "09/2022 – 10/2022", types.DateRange, "2022-09", "2022-10", false},
		{"compact numeric month range", "09/2022-10/2022", types.DateRange, "2022-09", "2022-10", false},
		{"compact range across years", "05/2020-02/2021", types.DateRange, "2020-05", "2021-02", false},
		{"compact iso range", "2019-03-2020-05", types.DateRange, "2019-03", "2020-05", false},
		{"french month name", "Janvier 2023", types.DateSingle, "2023-01", "2023-01", false},
		{"english abbreviation", "Jan. 2023", types.DateSingle, "2023-01", "2023-01", false},
		{"sept abbreviation", "sept 2019", types.DateSingle, "2019-09", "2019-09", false},
		{"iso month", "2021-03", types.DateSingle, "2021-03", "2021-03", false},
		{"two-digit month year", "09/22", types.DateSingle, "2022-09", "2022-09", false},
		{"bare year range", "2019 - 2021", types.DateRange, "2019", "2021", false},
		{"french connector", "2019 à 2021", types.DateRange, "2019", "2021", false},
		{"english connector", "March 2018 to June 2020", types.DateRange, "2018-03", "2020-06", false},
		{"jusqu'à connector", "01/2020 jusqu'à 12/2020", types.DateRange, "2020-01", "2020-12", false},
		{"month borrows year", "Janvier - Mars 2020", types.DateRange, "2020-01", "2020-03", false},
		{"ongoing token", "Janvier 2021 - Présent", types.DateOngoing, "2021-01", "", true},
		{"ongoing english", "2020 - current", types.DateOngoing, "2020", "", true},
		{"depuis", "depuis 2021", types.DateOngoing, "2021", "", true},
		{"since", "Since 03/2022", types.DateOngoing, "2022-03", "", true},
		{"bare year", "2018", types.DateSingle, "2018", "2018", false},
		{"us order swap", "12/25/2020", types.DateSingle, "2020-12", "2020-12", false},
		{"ocr letters", "2O19 - 2O21", types.DateRange, "2019", "2021", false},
		{"relative french", "l'an dernier", types.DateRelative, "2025", "2025", false},
		{"relative english", "last year", types.DateRelative, "2025", "2025", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := p.Parse(tt.text).Next()
			require.True(t, ok, "no date in %q", tt.text)
			assert.Equal(t, tt.dateType, d.DateType)
			start, end := ym(d)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.isCurrent, d.IsCurrent)
			assert.Equal(t, -1, d.LineIndex)
			assert.Greater(t, d.Confidence, 0.0)
		})
	}
}

func TestParse_EmbeddedInLine(t *testing.T) {
	p := newTestParser()

	d, ok := p.Parse("Stage chez ACME — 09/2022 – 10/2022").Next()
	require.True(t, ok)
	assert.Equal(t, types.DateRange, d.DateType)
	assert.Equal(t, "09/2022 – 10/2022", d.OriginalText)
	assert.InDelta(t, 0.95, d.Confidence, 1e-9)

	d, ok = p.Parse("TOEFL B2 — Janvier 2023").Next()
	require.True(t, ok)
	assert.Equal(t, "Janvier 2023", d.OriginalText)
}

func TestParse_Duration(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		text   string
		months int
	}{
		{"Stage de 6 mois", 6},
		{"2 ans d'expérience", 24},
		{"18 months", 18},
		{"8 semaines", 2},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d, ok := p.Parse(tt.text).Next()
			require.True(t, ok)
			assert.Equal(t, types.DateDuration, d.DateType)
			require.NotNil(t, d.DurationMonths)
			assert.Equal(t, tt.months, *d.DurationMonths)
			assert.Nil(t, d.StartYear)
		})
	}
}

func TestParse_OCRLowersConfidence(t *testing.T) {
	p := newTestParser()

	clean, ok := p.Parse("2019 - 2021").Next()
	require.True(t, ok)
	noisy, ok := p.Parse("2O19 - 2O21").Next()
	require.True(t, ok)
	assert.Less(t, noisy.Confidence, clean.Confidence)

	off := config.Defaults().Dates
	off.OCRTolerance = false
	strict := NewParser(off, WithClock(FixedClock(2026)))
	assert.False(t, strict.HasDate("2O19"))
}

func TestParse_OCRLeavesWordsAlone(t *testing.T) {
	p := newTestParser()
	assert.False(t, p.HasDate("TOEFL B2"))
	assert.False(t, p.HasDate("Bolt SOS"))
}

func TestExpandYear_CenturyCutoff(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"17", 2017},
		{"50", 2050},
		{"51", 1951},
		{"99", 1999},
		{"00", 2000},
		{"2019", 2019},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, _ := expandYear(tt.in, 50)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_RejectsOutOfWindow(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name string
		text string
	}{
		{"too old", "1930 - 1940"},
		{"start too far ahead", "2028 - 2029"},
		{"end too far ahead", "2024 - 2035"},
		{"single too old", "1901"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := p.Parse(tt.text)
			_, ok := s.Next()
			assert.False(t, ok)
			rej := s.Rejections()
			require.Len(t, rej, 1)
			assert.Equal(t, RejectOutOfWindow, rej[0].Reason)
		})
	}

	// a planned end within five years stays valid
	d, ok := p.Parse("2024 - 2030").Next()
	require.True(t, ok)
	assert.Equal(t, 2030, *d.EndYear)
}

func TestParse_Inversion(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		text     string
		inverted bool
	}{
		{"2021 - 2019", true},
		{"03/2021 - 01/2021", true},
		{"11/2021-03/2021", true},
		{"11/2021 - 03/2021", true},
		{"09/2022-10/2022", false},
		{"2021 - 03/2021", false},
		{"2019 - 2021", false},
		{"Développeur", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.inverted, p.Inverted(tt.text))
			if tt.inverted {
				s := p.Parse(tt.text)
				assert.True(t, s.Inverted())
				assert.Equal(t, 0, s.Remaining())
			}
		})
	}
}

func TestParse_NoDates(t *testing.T) {
	p := newTestParser()
	for _, text := range []string{"", "Développeur Go", "Équipe de 15 personnes", "Marketing Manager"} {
		assert.False(t, p.HasDate(text), text)
	}
}

func TestParse_OngoingAlone(t *testing.T) {
	p := newTestParser()
	d, ok := p.Parse("Poste actuel").Next()
	require.True(t, ok)
	assert.Equal(t, types.DateOngoing, d.DateType)
	assert.True(t, d.IsCurrent)
	assert.Nil(t, d.StartYear)
	assert.InDelta(t, confOngoingAlone, d.Confidence, 1e-9)
}

func TestParse_DedupsSameYears(t *testing.T) {
	p := newTestParser()
	got := p.Parse("2019 - 2021 (2019-2021)").Collect()
	require.Len(t, got, 1)
	assert.Equal(t, 2019, *got[0].StartYear)
}

func TestParse_OrderedByConfidence(t *testing.T) {
	p := newTestParser()
	got := p.Parse("2015 ; 01/2019 - 03/2021").Collect()
	require.Len(t, got, 2)
	assert.Equal(t, types.DateRange, got[0].DateType)
	assert.Equal(t, types.DateSingle, got[1].DateType)
	assert.GreaterOrEqual(t, got[0].Confidence, got[1].Confidence)
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser()
	text := "Janvier 2019 - Mars 2021, puis depuis 2022 ; 6 mois"
	first := p.Parse(text).Collect()
	for range 5 {
		assert.Equal(t, first, p.Parse(text).Collect())
	}
}

func TestStream_NotRestartable(t *testing.T) {
	p := newTestParser()
	s := p.Parse("2019 - 2021 ; 2015")

	assert.Equal(t, 2, s.Remaining())
	all := s.Collect()
	assert.Len(t, all, 2)

	_, ok := s.Next()
	assert.False(t, ok)
	assert.Empty(t, s.Collect())

	count := 0
	for range s.All() {
		count++
	}
	assert.Zero(t, count)
}

func TestStream_AllStopsEarly(t *testing.T) {
	p := newTestParser()
	s := p.Parse("2019 - 2021 ; 2015")
	for range s.All() {
		break
	}
	assert.Equal(t, 1, s.Remaining())
}

func TestParseWindow_ContextAdjustments(t *testing.T) {
	lines := []string{"Ingénieur logiciel", "ACME", "2019 - 2021", "Hobbies"}

	plain := newTestParser()
	d, ok := plain.ParseWindow(lines, 2).Next()
	require.True(t, ok)
	assert.InDelta(t, 0.85, d.Confidence, 1e-9)
	assert.Equal(t, 2, d.LineIndex)

	cued := newTestParser(WithCues(func(line string) bool { return strings.HasPrefix(line, "Ingénieur") }))
	boosted, ok := cued.ParseWindow(lines, 2).Next()
	require.True(t, ok)
	// cue two lines away: a quarter of the boost
	assert.InDelta(t, 0.875, boosted.Confidence, 1e-9)

	sameLine := newTestParser(WithCues(func(line string) bool { return strings.Contains(line, "2019") }))
	full, ok := sameLine.ParseWindow(lines, 2).Next()
	require.True(t, ok)
	assert.InDelta(t, 0.95, full.Confidence, 1e-9)

	none := newTestParser(WithCues(func(string) bool { return false }))
	penalized, ok := none.ParseWindow(lines, 2).Next()
	require.True(t, ok)
	assert.InDelta(t, 0.75, penalized.Confidence, 1e-9)
}

func TestParseWindow_NeighbourDecay(t *testing.T) {
	p := newTestParser()
	lines := []string{"Développeur", "2019 - 2021", "Lyon"}

	d, ok := p.ParseWindow(lines, 0).Next()
	require.True(t, ok)
	assert.Equal(t, 1, d.LineIndex)
	assert.InDelta(t, 0.85*0.9, d.Confidence, 1e-9)

	s := p.ParseWindow(lines, 7)
	assert.Equal(t, 0, s.Remaining())
}

func TestShape(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		text string
		want Shape
	}{
		{"30/01/17", ShapeNumeric},
		{"2019 - 2021", ShapeNumeric},
		{"12345", ShapeNumeric},
		{"Janvier 2023", ShapeMonthYear},
		{"Sept. 2019 - Présent", ShapeMonthYear},
		{"Développeur Go", ShapeText},
		{"Mai Consulting", ShapeText},
		{"", ShapeText},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Shape(tt.text))
		})
	}
}

func TestCurrentYear_ConfigPins(t *testing.T) {
	cfg := config.Defaults().Dates
	cfg.CurrentYear = 2020
	p := NewParser(cfg, WithClock(FixedClock(2030)))
	assert.Equal(t, 2020, p.CurrentYear())

	assert.Equal(t, 2030, newTestParser(WithClock(FixedClock(2030))).CurrentYear())
}
