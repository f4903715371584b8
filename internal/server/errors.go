package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/db"
	"github.com/jonathan/resume-sifter/internal/ingestion"
)

// RequestError is a client error with an explicit status.
type RequestError struct {
	Status  int
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

func badRequest(message string, cause error) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: message, Cause: cause}
}

// errNoStore is returned by run endpoints when no database is configured.
var errNoStore = &RequestError{Status: http.StatusServiceUnavailable, Message: "run store not configured"}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var reqErr *RequestError
	var notFound *db.NotFoundError
	var ingestErr *ingestion.Error
	var invalid validator.ValidationErrors
	var cfgLoad *config.LoadError
	var cfgInvalid *config.InvalidError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &reqErr):
		return reqErr.Status
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &ingestErr), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &cfgLoad), errors.As(err, &cfgInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
