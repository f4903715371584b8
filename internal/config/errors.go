package config

import "fmt"

// LoadError represents a failure to read or decode a config file
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// InvalidError represents a config whose values are out of range
type InvalidError struct {
	Message string
	Cause   error
}

func (e *InvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *InvalidError) Unwrap() error {
	return e.Cause
}
