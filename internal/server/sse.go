package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/resume-sifter/internal/db"
	"github.com/jonathan/resume-sifter/internal/pipeline"
	"github.com/jonathan/resume-sifter/internal/types"
)

// Event names of an extraction stream, in the order they are sent.
const (
	EventStep     = "step"
	EventAlert    = "alert"
	EventResult   = "result"
	EventComplete = "complete"
	EventError    = "error"
)

// retryMillis is the reconnection delay suggested to clients.
const retryMillis = 3000

// AlertEvent is one quality alert of the run report.
type AlertEvent struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CompleteEvent closes a successful stream with the run summary.
type CompleteEvent struct {
	RunID      string `json:"run_id"`
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status"`
	Candidates int    `json:"candidates"`
	Accepted   int    `json:"accepted"`
	Alerts     int    `json:"alerts"`
	Stored     bool   `json:"stored"`
}

// ErrorEvent closes a failed stream. Status is the code the plain endpoint
// would have answered with.
type ErrorEvent struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// runStream writes the events of one extraction run as server-sent events.
type runStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// newRunStream sets the event-stream headers on w and sends the retry hint.
func newRunStream(w http.ResponseWriter) (*runStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", retryMillis); err != nil {
		return nil, err
	}
	flusher.Flush()
	return &runStream{w: w, flusher: flusher}, nil
}

func (s *runStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Step forwards one pipeline progress event.
func (s *runStream) Step(ev pipeline.ProgressEvent) error {
	return s.send(EventStep, ev)
}

// Result sends every report alert on its own, then the full result.
func (s *runStream) Result(res *ExtractResponse) error {
	for _, a := range res.Report.Alerts {
		if err := s.send(EventAlert, splitAlert(a)); err != nil {
			return err
		}
	}
	return s.send(EventResult, res)
}

// Complete sends the run summary that ends the stream.
func (s *runStream) Complete(res *ExtractResponse) error {
	return s.send(EventComplete, CompleteEvent{
		RunID:      res.RunID,
		DocumentID: res.DocumentID,
		Status:     db.RunStatusCompleted,
		Candidates: res.Report.Candidates,
		Accepted:   res.Report.Accepted,
		Alerts:     len(res.Report.Alerts),
		Stored:     res.Stored,
	})
}

// Fail ends the stream with err.
func (s *runStream) Fail(err error) error {
	return s.send(EventError, ErrorEvent{Error: err.Error(), Status: HTTPStatus(err)})
}

// splitAlert separates the severity prefix of a report alert.
func splitAlert(alert string) AlertEvent {
	for _, sev := range []string{types.SeverityCritical, types.SeverityWarning} {
		if msg, ok := strings.CutPrefix(alert, sev); ok {
			return AlertEvent{
				Severity: strings.ToLower(strings.TrimSuffix(sev, ":")),
				Message:  strings.TrimSpace(msg),
			}
		}
	}
	return AlertEvent{Severity: "info", Message: alert}
}
