package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/types"
)

func newTestRouter() *Router {
	dp := dates.NewParser(config.Defaults().Dates, dates.WithClock(dates.FixedClock(2026)))
	return New(lexicon.MustLoad(), dp)
}

func TestRoute_Rules(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name       string
		text       string
		hints      Hints
		target     types.ContentType
		subtype    types.Subtype
		confidence float64
		reason     string
	}{
		{
			name:       "internship without degree",
			text:       "Stage chez ACME — 09/2022 – 10/2022",
			hints:      Hints{HasCompany: true, HasDates: true},
			target:     types.ContentExperience,
			subtype:    types.SubtypeInternship,
			confidence: 0.95,
			reason:     ReasonInternshipWithoutDegree,
		},
		{
			name:       "language test",
			text:       "TOEFL B2 — Janvier 2023",
			hints:      Hints{HasDates: true},
			target:     types.ContentCertification,
			confidence: 0.98,
			reason:     ReasonLanguageCertification,
		},
		{
			name:       "cefr level with language",
			text:       "Anglais courant (C1)",
			target:     types.ContentCertification,
			confidence: 0.98,
			reason:     ReasonLanguageCertification,
		},
		{
			name:       "professional certification",
			text:       "AWS Certified Solutions Architect",
			hints:      Hints{HasRole: true},
			target:     types.ContentCertification,
			confidence: 0.90,
			reason:     ReasonProfessionalCertification,
		},
		{
			name:       "internship with degree",
			text:       "Stage de fin d'études — Master Informatique",
			hints:      Hints{HasSchool: true},
			target:     types.ContentEducation,
			confidence: 0.85,
			reason:     ReasonInternshipWithDegree,
		},
		{
			name:       "academic project ignores organization",
			text:       "Projet de fin d'études : application mobile",
			hints:      Hints{HasCompany: true},
			target:     types.ContentProject,
			confidence: 0.90,
			reason:     ReasonAcademicProject,
		},
		{
			name:       "dated project without organization",
			text:       "Hackathon Paris 2021",
			hints:      Hints{HasDates: true},
			target:     types.ContentProject,
			confidence: 0.80,
			reason:     ReasonDatedProject,
		},
		{
			name:       "project with organization is experience",
			text:       "Hackathon Paris 2021",
			hints:      Hints{HasDates: true, HasCompany: true},
			target:     types.ContentExperience,
			confidence: 0.60,
			reason:     ReasonHasOrgOrRole,
		},
		{
			name:       "role",
			text:       "Développeur backend",
			hints:      Hints{HasRole: true},
			target:     types.ContentExperience,
			confidence: 0.60,
			reason:     ReasonHasOrgOrRole,
		},
		{
			name:       "school with degree",
			text:       "Université Lyon 2 — Licence Économie",
			hints:      Hints{HasSchool: true},
			target:     types.ContentEducation,
			confidence: 0.70,
			reason:     ReasonSchoolWithDegree,
		},
		{
			name:       "no signal",
			text:       "Football, guitare",
			target:     types.ContentInterest,
			confidence: 0.50,
			reason:     ReasonNoProfessionalSignal,
		},
		{
			name:       "dates only",
			text:       "Rédaction",
			hints:      Hints{HasDates: true},
			target:     types.ContentUnknown,
			confidence: 0.30,
			reason:     ReasonUnresolved,
		},
		{
			name:       "action verb without structure",
			text:       "Géré une équipe",
			target:     types.ContentUnknown,
			confidence: 0.10,
			reason:     ReasonUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Route(tt.text, tt.hints)
			assert.Equal(t, tt.target, d.Target)
			assert.Equal(t, tt.subtype, d.Subtype)
			assert.InDelta(t, tt.confidence, d.Confidence, 1e-9)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestRoute_UnknownNeverConfident(t *testing.T) {
	r := newTestRouter()
	for _, h := range []Hints{{}, {HasDates: true}, {HasSchool: true}} {
		d := r.Route("Divers", h)
		if d.Target == types.ContentUnknown {
			assert.LessOrEqual(t, d.Confidence, 0.30)
		}
	}
}

func TestRouteCandidate(t *testing.T) {
	r := newTestRouter()

	d := r.RouteCandidate(types.Candidate{
		Title:        "Stagiaire développeur",
		Organization: "ACME",
		DateText:     "06/2021 - 08/2021",
	})
	assert.Equal(t, types.ContentExperience, d.Target)
	assert.Equal(t, types.SubtypeInternship, d.Subtype)

	d = r.RouteCandidate(types.Candidate{Title: "TOEIC 905", DateText: "2022"})
	assert.Equal(t, types.ContentCertification, d.Target)
	assert.Equal(t, types.RouteToCertification, d.Routing())
}

func TestHintsFor(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name string
		c    types.Candidate
		want Hints
	}{
		{
			name: "school organization",
			c:    types.Candidate{Title: "Ingénieur logiciel", Organization: "École Centrale"},
			want: Hints{HasSchool: true, HasRole: true},
		},
		{
			name: "company with dates in description",
			c:    types.Candidate{Title: "Vente", Organization: "ACME", Description: "2019 - 2021"},
			want: Hints{HasCompany: true, HasDates: true},
		},
		{
			name: "structured dates",
			c:    types.Candidate{Title: "Analyste", StartDate: &types.YearMonth{Year: 2020}},
			want: Hints{HasDates: true, HasRole: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.HintsFor(tt.c))
		})
	}
}

func TestDecision_Routing(t *testing.T) {
	tests := []struct {
		target types.ContentType
		want   types.Routing
	}{
		{types.ContentCertification, types.RouteToCertification},
		{types.ContentEducation, types.RouteToEducation},
		{types.ContentExperience, types.RouteAcceptExperience},
		{types.ContentProject, types.RouteAcceptExperience},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Decision{Target: tt.target}.Routing())
		})
	}
}
