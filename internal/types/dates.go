// Package types provides type definitions for structured data used throughout the resume-sifter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DateType classifies a parsed date expression.
type DateType string

const (
	// DateRange has a start and an end
	DateRange DateType = "range"
	// DateOngoing has a start and an open end ("depuis 2021", "2021 - present")
	DateOngoing DateType = "ongoing"
	// DateSingle is a lone month/year or year
	DateSingle DateType = "single"
	// DateDuration is a length of time ("6 mois")
	DateDuration DateType = "duration"
	// DateRelative is anchored to now ("last year")
	DateRelative DateType = "relative"
)

// ParsedDate is one normalized date expression found in a line.
// Values are immutable once produced; copy before changing.
type ParsedDate struct {
	OriginalText   string   `json:"original_text"`
	DateType       DateType `json:"date_type"`
	StartYear      *int     `json:"start_year,omitempty"`
	EndYear        *int     `json:"end_year,omitempty"`
	StartMonth     *int     `json:"start_month,omitempty"`
	EndMonth       *int     `json:"end_month,omitempty"`
	DurationMonths *int     `json:"duration_months,omitempty"`
	IsCurrent      bool     `json:"is_current"`
	Confidence     float64  `json:"confidence"`
	// LineIndex is the line the expression was found on, -1 for bare text
	LineIndex int `json:"line_index"`
}

// Start returns the start as a YearMonth, or nil if no start year was parsed.
func (p ParsedDate) Start() *YearMonth {
	if p.StartYear == nil {
		return nil
	}
	ym := YearMonth{Year: *p.StartYear}
	if p.StartMonth != nil {
		ym.Month = *p.StartMonth
	}
	return &ym
}

// End returns the end as a YearMonth, or nil for open or missing ends.
func (p ParsedDate) End() *YearMonth {
	if p.EndYear == nil {
		return nil
	}
	ym := YearMonth{Year: *p.EndYear}
	if p.EndMonth != nil {
		ym.Month = *p.EndMonth
	}
	return &ym
}

// YearMonth is a calendar month. Month is 0 when only the year is known.
type YearMonth struct {
	Year  int
	Month int
}

// String formats as YYYY-MM, or YYYY when the month is unknown.
func (y YearMonth) String() string {
	if y.Month == 0 {
		return fmt.Sprintf("%04d", y.Year)
	}
	return fmt.Sprintf("%04d-%02d", y.Year, y.Month)
}

// Before reports whether y is strictly earlier than other.
// An unknown month compares equal to any month of the same year.
func (y YearMonth) Before(other YearMonth) bool {
	if y.Year != other.Year {
		return y.Year < other.Year
	}
	if y.Month == 0 || other.Month == 0 {
		return false
	}
	return y.Month < other.Month
}

// ParseYearMonth parses the String form back.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	year, month, hasMonth := strings.Cut(s, "-")
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return YearMonth{}, fmt.Errorf("invalid year in %q", s)
	}
	ym := YearMonth{Year: y}
	if hasMonth {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return YearMonth{}, fmt.Errorf("invalid month in %q", s)
		}
		ym.Month = m
	}
	return ym, nil
}

// MarshalJSON encodes as a string like "2022-09".
func (y YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(y.String())
}

// UnmarshalJSON decodes the string form.
func (y *YearMonth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*y = parsed
	return nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
