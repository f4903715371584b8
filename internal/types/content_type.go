// Package types provides type definitions for structured data used throughout the resume-sifter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// ContentType is the closed set of résumé sections a fragment can be routed to.
type ContentType int

const (
	// ContentUnknown is a fragment with no usable signal
	ContentUnknown ContentType = iota
	// ContentExperience is a work-experience entry (internships included)
	ContentExperience
	// ContentEducation is a degree or school entry
	ContentEducation
	// ContentCertification is a certificate or language test
	ContentCertification
	// ContentProject is a personal, academic, or hackathon project
	ContentProject
	// ContentInterest is a hobby or interest line
	ContentInterest
)

// AllContentTypes lists every section in output order.
var AllContentTypes = []ContentType{
	ContentExperience,
	ContentEducation,
	ContentCertification,
	ContentProject,
	ContentInterest,
	ContentUnknown,
}

// String returns the wire name of the content type.
func (c ContentType) String() string {
	switch c {
	case ContentExperience:
		return "experience"
	case ContentEducation:
		return "education"
	case ContentCertification:
		return "certification"
	case ContentProject:
		return "project"
	case ContentInterest:
		return "interest"
	case ContentUnknown:
		return "unknown"
	}
	return fmt.Sprintf("content_type(%d)", int(c))
}

// Valid reports whether c is one of the declared content types.
func (c ContentType) Valid() bool {
	return c >= ContentUnknown && c <= ContentInterest
}

// ParseContentType converts a wire name back to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	for _, c := range AllContentTypes {
		if c.String() == s {
			return c, nil
		}
	}
	return ContentUnknown, fmt.Errorf("unknown content type %q", s)
}

// MarshalText implements encoding.TextMarshaler so content types can key JSON maps.
func (c ContentType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid content type %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ContentType) UnmarshalText(text []byte) error {
	parsed, err := ParseContentType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalJSON encodes the content type as its wire name.
func (c ContentType) MarshalJSON() ([]byte, error) {
	text, err := c.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON decodes a wire name.
func (c *ContentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(s))
}

// Subtype refines a content type. Only experience currently has one.
type Subtype string

const (
	// SubtypeNone means no refinement
	SubtypeNone Subtype = ""
	// SubtypeInternship marks a stage, internship or work-study experience
	SubtypeInternship Subtype = "internship"
)

// Routing is the validator's suggestion for where a candidate belongs.
type Routing string

const (
	// RouteAcceptExperience keeps the candidate in the experience section
	RouteAcceptExperience Routing = "accept-as-experience"
	// RouteToEducation sends the candidate to the education section
	RouteToEducation Routing = "route-to-education"
	// RouteToCertification sends the candidate to the certification section
	RouteToCertification Routing = "route-to-certification"
)

// Target returns the section a routing suggestion points to.
func (r Routing) Target() ContentType {
	switch r {
	case RouteToEducation:
		return ContentEducation
	case RouteToCertification:
		return ContentCertification
	default:
		return ContentExperience
	}
}

// Provenance records how a record ended up in its section.
type Provenance string

const (
	// ProvenanceExtracted is the default: the record came from upstream slicing
	ProvenanceExtracted Provenance = "extracted"
	// ProvenanceRouted means the router moved it to a different section
	ProvenanceRouted Provenance = "routed"
	// ProvenanceDemoted means the guardrails moved it from experience to education
	ProvenanceDemoted Provenance = "demoted"
	// ProvenanceRecovered means the skew recovery promoted it into experience
	ProvenanceRecovered Provenance = "recovered"
	// ProvenanceFallback means the minimal fallback validator decided it
	ProvenanceFallback Provenance = "fallback"
)
