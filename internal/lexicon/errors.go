package lexicon

import (
	"fmt"
	"strings"
)

// LoadError represents a failure to read or decode lexicon files
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("lexicon error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("lexicon error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// MissingListError reports required word lists that are absent or empty
type MissingListError struct {
	Kinds []string
}

func (e *MissingListError) Error() string {
	return fmt.Sprintf("lexicon error: missing lists: %s", strings.Join(e.Kinds, ", "))
}
