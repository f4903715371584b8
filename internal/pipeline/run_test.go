package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/logging"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/pipeline/steps"
	"github.com/jonathan/resume-sifter/internal/types"
	"github.com/jonathan/resume-sifter/internal/validation"
)

func sampleDocument() types.Document {
	return types.Document{
		ID:       "cv-1",
		Language: "fr",
		Lines: []string{
			"EXPÉRIENCE PROFESSIONNELLE",
			"Développeur backend — Capgemini",
			"Janvier 2019 - Mars 2021",
			"CDI, développé des API pour les clients de l'équipe",
			"FORMATION",
			"Master informatique — Université Lyon",
			"2016 - 2018",
			"CERTIFICATIONS",
			"TOEIC 950",
			"CENTRES D'INTÉRÊT",
			"Randonnée, photographie",
		},
		Candidates: []types.Candidate{
			{
				Title:        "Développeur backend",
				Organization: "Capgemini",
				DateText:     "Janvier 2019 - Mars 2021",
				Description:  "CDI, développé des API pour les clients de l'équipe",
				LineIndex:    1,
				Section:      types.ContentExperience,
			},
			{
				Title:        "Développeur backend",
				Organization: "Capgemini",
				DateText:     "Janvier 2019 - Mars 2021",
				LineIndex:    1,
				Section:      types.ContentExperience,
			},
			{
				Title:        "Master informatique",
				Organization: "Université Lyon",
				DateText:     "2016 - 2018",
				LineIndex:    5,
				Section:      types.ContentEducation,
			},
			{Title: "TOEIC 950", LineIndex: 8, Section: types.ContentCertification},
			{Title: "Randonnée, photographie", LineIndex: 10, Section: types.ContentInterest},
			{Title: "Janvier 2019", Organization: "2019 - 2021", LineIndex: 2, Section: types.ContentExperience},
		},
	}
}

func testDeps() Deps {
	cfg := config.Defaults()
	return Deps{
		Config: &cfg,
		Clock:  dates.FixedClock(2024),
		Logger: logging.Discard(),
	}
}

func runSample(t *testing.T, deps Deps, doc types.Document) *types.RunResult {
	t.Helper()
	res, err := Run(context.Background(), doc, deps)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestRun_SortsCandidatesIntoSections(t *testing.T) {
	res := runSample(t, testDeps(), sampleDocument())

	exp := res.Section(types.ContentExperience)
	require.Len(t, exp, 1)
	assert.Equal(t, "Développeur backend", exp[0].Title)
	assert.Equal(t, "Capgemini", exp[0].Organization)
	assert.NotEmpty(t, exp[0].Description, "the richer duplicate survives")
	assert.Equal(t, &types.YearMonth{Year: 2019, Month: 1}, exp[0].StartDate)
	assert.Equal(t, &types.YearMonth{Year: 2021, Month: 3}, exp[0].EndDate)
	assert.Equal(t, types.ProvenanceExtracted, exp[0].Provenance)
	require.NotNil(t, exp[0].Validation)
	assert.True(t, exp[0].Validation.IsValid)

	edu := res.Section(types.ContentEducation)
	require.Len(t, edu, 1)
	assert.Equal(t, "Master informatique", edu[0].Title)
	assert.Equal(t, &types.YearMonth{Year: 2016}, edu[0].StartDate)

	cert := res.Section(types.ContentCertification)
	require.Len(t, cert, 1)
	assert.InDelta(t, 0.98, cert[0].Confidence, 1e-9)

	require.Len(t, res.Section(types.ContentInterest), 1)
	assert.Empty(t, res.Section(types.ContentProject))

	unknown := res.Section(types.ContentUnknown)
	require.Len(t, unknown, 1)
	assert.Equal(t, "Janvier 2019", unknown[0].Title)
	assert.Zero(t, unknown[0].Confidence)
	assert.True(t, unknown[0].Validation.Hard)

	assert.Equal(t, "cv-1", res.DocumentID)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_Report(t *testing.T) {
	res := runSample(t, testDeps(), sampleDocument())
	r := res.Report

	assert.Equal(t, 6, r.Candidates)
	assert.Equal(t, 1, r.Accepted)
	assert.Equal(t, 1, r.Duplicates)
	assert.Equal(t, 2024, r.CurrentYear)
	assert.False(t, r.FallbackUsed)
	assert.Equal(t, 1, r.GateRejections[validation.ReasonTitleIsMonthYear])
	assert.Equal(t, 1, r.GateRejections[validation.ReasonOrgIsDate])
	assert.Empty(t, r.Alerts)
	assert.Empty(t, r.Decisions)
	assert.Len(t, r.Balance, len(types.AllContentTypes))
	require.NotEmpty(t, r.Budgets)
	assert.Equal(t, "experience_to_education", r.Budgets[0].Route)
}

func TestRun_NoCandidateLost(t *testing.T) {
	res := runSample(t, testDeps(), sampleDocument())

	total := 0
	for _, section := range types.AllContentTypes {
		recs := res.Section(section)
		total += len(recs)

		seen := make(map[string]bool)
		for _, r := range recs {
			assert.GreaterOrEqual(t, r.Confidence, 0.0)
			assert.LessOrEqual(t, r.Confidence, 1.0)
			key := parsing.RecordKey(r)
			assert.False(t, seen[key], "duplicate key %q in %s", key, section)
			seen[key] = true
		}
	}
	assert.Equal(t, res.Report.Candidates, total+res.Report.Duplicates)
}

func TestRun_Deterministic(t *testing.T) {
	doc := sampleDocument()

	serial := testDeps()
	serial.Config.Pipeline.Workers = 1
	parallel := testDeps()
	parallel.Config.Pipeline.Workers = 8

	first := runSample(t, serial, doc)
	for range 5 {
		again := runSample(t, parallel, doc)
		if diff := cmp.Diff(first, again, cmpopts.IgnoreFields(types.RunResult{}, "RunID")); diff != "" {
			t.Fatalf("run output changed (-first +again):\n%s", diff)
		}
	}
}

func TestRun_RebindsMissingOrganization(t *testing.T) {
	doc := types.Document{
		Lines: []string{
			"Chef de projet",
			"Globex Technologies SAS",
			"Mars 2019 - Juin 2021",
			"Pilotage des équipes, gestion du budget client",
		},
		Candidates: []types.Candidate{
			{Title: "Chef de projet", LineIndex: 0, Section: types.ContentExperience},
		},
	}
	res := runSample(t, testDeps(), doc)

	exp := res.Section(types.ContentExperience)
	require.Len(t, exp, 1)
	assert.Equal(t, "Globex Technologies SAS", exp[0].Organization)
	assert.Greater(t, exp[0].Confidence, 0.9)
	assert.Equal(t, 1, res.Report.Rebinds)
	assert.Empty(t, res.Section(types.ContentUnknown))
}

func TestRun_FallbackValidator(t *testing.T) {
	deps := testDeps()
	deps.Config.Validator.Weights = config.GateWeights{}

	e, err := New(deps)
	require.NoError(t, err)
	assert.True(t, e.FallbackActive())

	res, err := e.Run(context.Background(), sampleDocument())
	require.NoError(t, err)

	exp := res.Section(types.ContentExperience)
	require.NotEmpty(t, exp)
	assert.Equal(t, types.ProvenanceFallback, exp[0].Provenance)
	assert.InDelta(t, 0.65, exp[0].Confidence, 1e-9)
	assert.True(t, res.Report.FallbackUsed)
	assert.Contains(t, res.Report.Alerts, "WARNING: fallback validator in use")
}

func TestRun_ProgressFollowsStepOrder(t *testing.T) {
	deps := testDeps()
	var events []ProgressEvent
	deps.OnProgress = func(ev ProgressEvent) { events = append(events, ev) }

	res := runSample(t, deps, sampleDocument())

	want, err := steps.Order()
	require.NoError(t, err)
	var got []string
	for _, ev := range events {
		got = append(got, ev.Step)
		assert.Equal(t, res.RunID, ev.RunID)
		assert.Equal(t, steps.StepRegistry[ev.Step].Category, ev.Category)
	}
	assert.Equal(t, want, got)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, sampleDocument(), testDeps())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestRun_EmptyDocument(t *testing.T) {
	res := runSample(t, testDeps(), types.Document{})
	for _, section := range types.AllContentTypes {
		assert.NotNil(t, res.Sections[section])
		assert.Empty(t, res.Sections[section])
	}
	assert.Zero(t, res.Report.Candidates)
	assert.Empty(t, res.Report.Alerts)
}

// skewedDocument has two jobs and twelve degrees; four degrees mention
// teamwork and read partly as experience.
func skewedDocument() types.Document {
	doc := types.Document{ID: "cv-skew", Language: "fr"}
	add := func(section types.ContentType, title, org, dateText, desc string) {
		c := types.Candidate{
			Title:        title,
			Organization: org,
			DateText:     dateText,
			Description:  desc,
			LineIndex:    len(doc.Lines),
			Section:      section,
		}
		doc.Lines = append(doc.Lines, c.Text())
		doc.Candidates = append(doc.Candidates, c)
	}

	add(types.ContentExperience, "Développeur backend", "Capgemini", "2019 - 2021", "Développé des API en équipe, CDI")
	add(types.ContentExperience, "Consultant data senior", "Sopra Steria", "2021 - 2023", "Missions client, gestion d'équipe")

	for _, e := range []struct{ title, org, dates string }{
		{"Licence Mathématiques", "Université de Lille", "2008 - 2011"},
		{"Master Physique", "Université de Bordeaux", "2011 - 2013"},
		{"Doctorat Chimie", "Université de Strasbourg", "2013 - 2016"},
		{"Licence Histoire", "Université de Rennes", "2005 - 2008"},
		{"Master Biologie", "Université de Nice", "2003 - 2005"},
		{"Licence Économie", "Université de Caen", "2000 - 2003"},
		{"Master Finance", "Université de Dijon", "1998 - 2000"},
		{"Licence Droit", "Université de Tours", "1995 - 1998"},
	} {
		add(types.ContentEducation, e.title, e.org, e.dates, "")
	}
	for _, e := range []struct{ title, org, dates string }{
		{"Master Informatique", "Université de Lyon", "2016 - 2018"},
		{"Licence Informatique", "Université de Grenoble", "2013 - 2016"},
		{"Master Réseaux", "Université de Nantes", "2018 - 2019"},
		{"Licence Statistique", "Université de Pau", "2010 - 2013"},
	} {
		add(types.ContentEducation, e.title, e.org, e.dates, "Travail en équipe")
	}
	return doc
}

func TestRun_SkewRecovery(t *testing.T) {
	deps := testDeps()
	g := deps.Config.Guardrails
	res := runSample(t, deps, skewedDocument())
	r := res.Report

	require.NotEmpty(t, r.Alerts)
	assert.Contains(t, r.Alerts[0], types.SeverityWarning+" section skew: education=12 experience=2")

	var recovery *types.BudgetReport
	for i := range r.Budgets {
		if r.Budgets[i].Route == "skew_recovery" {
			recovery = &r.Budgets[i]
		}
	}
	require.NotNil(t, recovery, "skew recovery ran")
	assert.Equal(t, g.RecoveryCap, recovery.Cap)
	assert.Equal(t, 3, recovery.Used)
	assert.Equal(t, 4, recovery.Eligible)
	assert.True(t, recovery.Exhausted)

	teamwork := map[string]bool{
		"Master Informatique": true, "Licence Informatique": true,
		"Master Réseaux": true, "Licence Statistique": true,
	}
	require.Len(t, r.Decisions, 3)
	for _, d := range r.Decisions {
		assert.Equal(t, types.ContentEducation, d.From)
		assert.Equal(t, types.ContentExperience, d.To)
		assert.True(t, teamwork[d.Title], "%q has no experience wording", d.Title)
		require.NotNil(t, d.Original)
		assert.GreaterOrEqual(t, d.Original.Confidence, g.BandLow)
		assert.LessOrEqual(t, d.Original.Confidence, g.BandHigh)
		assert.InDelta(t, d.Original.Confidence+g.RecoveryBoost, d.Confidence, 1e-9)
	}

	exp := res.Section(types.ContentExperience)
	assert.Len(t, exp, 5)
	assert.Equal(t, 5, r.Accepted)
	recovered := 0
	for _, rec := range exp {
		if rec.Provenance == types.ProvenanceRecovered {
			recovered++
		}
	}
	assert.Equal(t, 3, recovered)

	edu := res.Section(types.ContentEducation)
	require.Len(t, edu, 9)
	left := 0
	for _, rec := range edu {
		if teamwork[rec.Title] {
			left++
			assert.Equal(t, types.ProvenanceExtracted, rec.Provenance)
		}
	}
	assert.Equal(t, 1, left, "the cap leaves one borderline degree in education")
}
