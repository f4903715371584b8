package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/resume-sifter/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleResult() *types.RunResult {
	return &types.RunResult{
		RunID:      "run-123",
		DocumentID: "cv-42",
		Sections: map[types.ContentType][]types.Record{
			types.ContentExperience: {
				{
					Title:                "Chef de projet",
					Organization:         "Globex SAS",
					OriginalOrganization: "XYZ",
					StartDate:            &types.YearMonth{Year: 2019, Month: 1},
					IsCurrent:            true,
					Confidence:           0.91,
					Provenance:           types.ProvenanceExtracted,
					LineIndex:            3,
				},
			},
			types.ContentEducation: {
				{
					Title:        "Master informatique",
					Organization: "Université Lyon",
					StartDate:    &types.YearMonth{Year: 2016},
					EndDate:      &types.YearMonth{Year: 2018},
					Confidence:   0.8,
					Provenance:   types.ProvenanceRouted,
					LineIndex:    7,
				},
			},
		},
		Report: types.Report{
			Candidates:     4,
			Accepted:       1,
			Rebinds:        1,
			Duplicates:     1,
			GateRejections: map[string]int{"org_is_date": 2, "title_is_month_year": 1},
			Budgets:        []types.BudgetReport{{Route: "experience_to_education", Cap: 3, Used: 1, Eligible: 2}},
			Balance: []types.SectionBalance{
				{Section: types.ContentExperience, ItemCount: 1, SkewRatio: 1},
				{Section: types.ContentEducation, ItemCount: 1, SkewRatio: 1},
			},
			Decisions: []types.Decision{
				{
					LineIndex:  12,
					Title:      "Stage ingénieur",
					From:       types.ContentExperience,
					To:         types.ContentEducation,
					Reason:     "school_evidence",
					Confidence: 0.55,
					Evidence:   &types.DemotionEvidence{OrgIsSchool: true, EducationKeywordsPresent: true},
				},
			},
			Alerts:         []string{"WARNING: fallback validator in use", "CRITICAL: education section skew"},
			ConfigFromFile: true,
		},
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "run-123")
	assert.Contains(t, output, "cv-42")
	assert.Contains(t, output, "Candidates: 4")
	assert.Contains(t, output, "experience:")
	assert.NotContains(t, output, "Config:     defaults")
}

func TestPrintSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(nil)
	p.PrintSections(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSections(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "Chef de projet")
	assert.Contains(t, output, "Globex SAS (was XYZ)")
	assert.Contains(t, output, "2019-01 – present")
	assert.Contains(t, output, "2016 – 2018")
	assert.Contains(t, output, "routed")
	assert.Less(t, strings.Index(output, "Chef de projet"), strings.Index(output, "Master informatique"))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(sampleResult().Report)
	output := buf.String()

	assert.Contains(t, output, "org_is_date")
	assert.Contains(t, output, "experience_to_education")
	assert.Contains(t, output, "Stage ingénieur")
	assert.Contains(t, output, "2/4")
	assert.Contains(t, output, "ALERTS")
	assert.Less(t, strings.Index(output, "CRITICAL:"), strings.Index(output, "WARNING:"))
	assert.Less(t, strings.Index(output, "org_is_date"), strings.Index(output, "title_is_month_year"))
}

func TestPrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(types.Report{})

	assert.Empty(t, buf.String())
}

func TestPrintAlerts_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	alerts := make([]string, 8)
	for i := range alerts {
		alerts[i] = "WARNING: something"
	}
	p.PrintAlerts(alerts)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintSections_Markdown(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithMarkdown())

	p.PrintSections(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "| ")
	assert.Contains(t, output, "Master informatique")
	assert.NotContains(t, output, "┌")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress("validate", "6 candidates", 12)

	assert.Contains(t, buf.String(), "validate")
	assert.Contains(t, buf.String(), "(12ms)")
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name string
		rec  types.Record
		want string
	}{
		{name: "none", rec: types.Record{}, want: ""},
		{name: "single", rec: types.Record{StartDate: &types.YearMonth{Year: 2020}, EndDate: &types.YearMonth{Year: 2020}}, want: "2020"},
		{name: "end only", rec: types.Record{EndDate: &types.YearMonth{Year: 2021, Month: 6}}, want: "2021-06"},
		{name: "ongoing", rec: types.Record{StartDate: &types.YearMonth{Year: 2022, Month: 3}, IsCurrent: true}, want: "2022-03 – present"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dateRange(tt.rec))
		})
	}
}

func TestPrintRoutes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRoutes([]RouteRow{
		{LineIndex: 4, Title: "Stage ingénieur", From: types.ContentExperience, To: types.ContentEducation, Confidence: 0.7, Reason: "school_context"},
		{LineIndex: 9, Title: "TOEIC 950", From: types.ContentCertification, To: types.ContentCertification, Confidence: 0.95, Reason: "language_certification"},
	})
	output := buf.String()

	assert.Contains(t, output, "→ education")
	assert.Contains(t, output, "school_context")
	assert.NotContains(t, output, "→ certification")
}

func TestPrintDates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	start, month := 2021, 1

	p.PrintDates("Janvier 2021 - Présent", []types.ParsedDate{
		{OriginalText: "Janvier 2021 - Présent", DateType: types.DateOngoing, StartYear: &start, StartMonth: &month, IsCurrent: true, Confidence: 0.9},
	})
	p.PrintDates("rien", nil)
	output := buf.String()

	assert.Contains(t, output, "2021-01")
	assert.Contains(t, output, "present")
	assert.Contains(t, output, "ongoing")
	assert.Contains(t, output, "(no date)")
}
