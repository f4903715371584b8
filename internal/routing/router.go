// Package routing decides which résumé section a candidate belongs to before
// any experience validation runs.
package routing

import (
	"regexp"

	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/parsing"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Reasons attached to routing decisions.
const (
	ReasonLanguageCertification     = "language_certification"
	ReasonProfessionalCertification = "professional_certification"
	ReasonInternshipWithoutDegree   = "internship_without_degree"
	ReasonInternshipWithDegree      = "internship_with_degree"
	ReasonAcademicProject           = "academic_project"
	ReasonDatedProject              = "dated_project_without_org"
	ReasonHasOrgOrRole              = "has_org_or_role"
	ReasonSchoolWithDegree          = "school_with_degree"
	ReasonNoProfessionalSignal      = "no_professional_signal"
	ReasonUnresolved                = "unresolved"
)

// Decision confidences, in rule order.
const (
	confLanguageCertification     = 0.98
	confProfessionalCertification = 0.90
	confInternship                = 0.95
	confInternshipWithDegree      = 0.85
	confAcademicProject           = 0.90
	confDatedProject              = 0.80
	confOrgOrRole                 = 0.60
	confSchoolWithDegree          = 0.70
	confInterest                  = 0.50
	confUnknown                   = 0.30
	confNothing                   = 0.10
)

// Hints are structural signals known about a candidate.
type Hints struct {
	HasCompany bool
	HasSchool  bool
	HasDates   bool
	HasRole    bool
}

func (h Hints) any() bool {
	return h.HasCompany || h.HasSchool || h.HasDates || h.HasRole
}

// Decision is where a candidate should go and why.
type Decision struct {
	Target     types.ContentType `json:"target"`
	Subtype    types.Subtype     `json:"subtype,omitempty"`
	Confidence float64           `json:"confidence"`
	Reason     string            `json:"reason"`
}

// Routing converts the decision to the validator's routing suggestion.
func (d Decision) Routing() types.Routing {
	switch d.Target {
	case types.ContentCertification:
		return types.RouteToCertification
	case types.ContentEducation:
		return types.RouteToEducation
	default:
		return types.RouteAcceptExperience
	}
}

// reCEFR matches a CEFR level token in normalized text.
var reCEFR = regexp.MustCompile(`\b[abc][12]\b`)

// languages are the language names that turn a CEFR level into a certification.
var languages = []string{
	"anglais", "english", "francais", "french", "espagnol", "spanish",
	"allemand", "german", "italien", "italian", "portugais", "portuguese",
	"chinois", "chinese", "mandarin", "japonais", "japanese", "arabe", "arabic",
	"russe", "russian", "neerlandais", "dutch", "coreen", "korean",
}

// Router applies the routing rules in priority order. It is stateless and
// safe for concurrent use.
type Router struct {
	lex   *lexicon.Lexicon
	dates *dates.Parser
}

// New creates a Router. The date parser is optional and only used by
// RouteCandidate to detect dates in free text.
func New(lex *lexicon.Lexicon, dp *dates.Parser) *Router {
	return &Router{lex: lex, dates: dp}
}

// Route classifies text. The first matching rule wins.
func (r *Router) Route(text string, hints Hints) Decision {
	norm := parsing.Normalize(text)

	if r.isLanguageCertification(norm) {
		return Decision{Target: types.ContentCertification, Confidence: confLanguageCertification, Reason: ReasonLanguageCertification}
	}
	if r.lex.HasNormalized(lexicon.ProfessionalCertification, norm) {
		return Decision{Target: types.ContentCertification, Confidence: confProfessionalCertification, Reason: ReasonProfessionalCertification}
	}

	if r.lex.HasNormalized(lexicon.Internship, norm) {
		if r.lex.HasNormalized(lexicon.Degree, norm) {
			return Decision{Target: types.ContentEducation, Confidence: confInternshipWithDegree, Reason: ReasonInternshipWithDegree}
		}
		return Decision{
			Target:     types.ContentExperience,
			Subtype:    types.SubtypeInternship,
			Confidence: confInternship,
			Reason:     ReasonInternshipWithoutDegree,
		}
	}

	if r.lex.HasNormalized(lexicon.AcademicProject, norm) {
		return Decision{Target: types.ContentProject, Confidence: confAcademicProject, Reason: ReasonAcademicProject}
	}
	if hints.HasDates && !hints.HasCompany && r.lex.HasNormalized(lexicon.Project, norm) {
		return Decision{Target: types.ContentProject, Confidence: confDatedProject, Reason: ReasonDatedProject}
	}

	switch {
	case hints.HasCompany || hints.HasRole:
		return Decision{Target: types.ContentExperience, Confidence: confOrgOrRole, Reason: ReasonHasOrgOrRole}
	case hints.HasSchool && r.lex.HasNormalized(lexicon.Degree, norm):
		return Decision{Target: types.ContentEducation, Confidence: confSchoolWithDegree, Reason: ReasonSchoolWithDegree}
	case !hints.any() && !r.lex.HasNormalized(lexicon.ActionVerb, norm):
		return Decision{Target: types.ContentInterest, Confidence: confInterest, Reason: ReasonNoProfessionalSignal}
	case hints.any():
		return Decision{Target: types.ContentUnknown, Confidence: confUnknown, Reason: ReasonUnresolved}
	}
	return Decision{Target: types.ContentUnknown, Confidence: confNothing, Reason: ReasonUnresolved}
}

// RouteCandidate derives hints from the candidate fields and routes its text.
func (r *Router) RouteCandidate(c types.Candidate) Decision {
	return r.Route(c.Text(), r.HintsFor(c))
}

// HintsFor derives structural hints from a candidate.
func (r *Router) HintsFor(c types.Candidate) Hints {
	text := c.Text()
	orgIsSchool := c.Organization != "" && r.lex.Has(lexicon.School, c.Organization)
	h := Hints{
		HasCompany: c.Organization != "" && !orgIsSchool,
		HasSchool:  orgIsSchool || r.lex.Has(lexicon.School, text),
		HasDates:   c.HasDates(),
		HasRole:    c.Title != "" && r.lex.Has(lexicon.Role, c.Title),
	}
	if !h.HasDates && r.dates != nil {
		h.HasDates = r.dates.HasDate(text)
	}
	return h
}

func (r *Router) isLanguageCertification(norm string) bool {
	if r.lex.HasNormalized(lexicon.LanguageCertification, norm) {
		return true
	}
	if !reCEFR.MatchString(norm) {
		return false
	}
	for _, lang := range languages {
		if parsing.ContainsTerm(norm, lang) {
			return true
		}
	}
	return false
}
