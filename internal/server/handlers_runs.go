package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-sifter/internal/db"
	"github.com/jonathan/resume-sifter/internal/types"
)

// RunDetailResponse is returned by GET /runs/{id}
type RunDetailResponse struct {
	*db.Run
	Steps []db.RunStep `json:"steps"`
}

// RecordsResponse is returned by GET /runs/{id}/records
type RecordsResponse struct {
	RunID   string            `json:"run_id"`
	Records []db.StoredRecord `json:"records"`
}

// runID parses the {id} path value, writing the error response on failure.
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.writeError(w, errNoStore)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return id, true
}

// handleListRuns lists stored runs, most recent first. Query parameters:
// document_id, status, alerts=true, limit.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errNoStore)
		return
	}
	q := r.URL.Query()
	filters := db.RunFilters{
		DocumentID: q.Get("document_id"),
		Status:     q.Get("status"),
	}
	if v := q.Get("alerts"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "alerts must be a boolean")
			return
		}
		filters.WithAlerts = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

// handleGetRun returns a stored run with its step timings
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if run == nil {
		s.writeError(w, &db.NotFoundError{Kind: "run", ID: id.String()})
		return
	}
	steps, err := s.store.ListRunSteps(r.Context(), id, "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if steps == nil {
		steps = []db.RunStep{}
	}
	s.jsonResponse(w, http.StatusOK, RunDetailResponse{Run: run, Steps: steps})
}

// handleGetReport returns the stored report of a run
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	report, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if report == nil {
		s.writeError(w, &db.NotFoundError{Kind: "report", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleListRecords returns the stored records of a run, optionally for one
// section (?section=education).
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	section := r.URL.Query().Get("section")
	if section != "" {
		var c types.ContentType
		if err := c.UnmarshalText([]byte(section)); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "unknown section "+section)
			return
		}
	}
	records, err := s.store.ListRecords(r.Context(), id, section)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []db.StoredRecord{}
	}
	s.jsonResponse(w, http.StatusOK, RecordsResponse{RunID: id.String(), Records: records})
}

// handleListRunSteps returns the step timings of a run, optionally filtered
// by ?status=
func (s *Server) handleListRunSteps(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	steps, err := s.store.ListRunSteps(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if steps == nil {
		steps = []db.RunStep{}
	}
	s.jsonResponse(w, http.StatusOK, steps)
}

// handleDeleteRun deletes a stored run
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
