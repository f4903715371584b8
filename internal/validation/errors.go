// Package validation decides whether a candidate is a plausible work experience.
package validation

import "fmt"

// ConstructionError is returned when a Validator cannot be built, usually
// because a lexicon or one of its required lists is missing.
type ConstructionError struct {
	Message string
	Cause   error
}

func (e *ConstructionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validator construction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validator construction error: %s", e.Message)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}
