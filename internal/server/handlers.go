package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/db"
	"github.com/jonathan/resume-sifter/internal/ingestion"
	"github.com/jonathan/resume-sifter/internal/pipeline"
	"github.com/jonathan/resume-sifter/internal/types"
)

// maxBodyBytes bounds an uploaded document.
const maxBodyBytes = 2 << 20

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status         string `json:"status"`
	ConfigFromFile bool   `json:"config_from_file"`
	Store          bool   `json:"store"`
}

// ReloadResponse is returned by POST /config/reload
type ReloadResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// ExtractResponse wraps a run result with its stored run ID, if any.
type ExtractResponse struct {
	*types.RunResult
	Stored bool `json:"stored"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		ConfigFromFile: s.fromFile.Load(),
		Store:          s.store != nil,
	})
}

// handleExtract sifts one document. The body is a JSON Document, plain
// text or HTML, chosen by Content-Type.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	res, err := s.sift(r, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleExtractStream sifts one document and streams step progress as
// server-sent events, followed by the result.
func (s *Server) handleExtractStream(w http.ResponseWriter, r *http.Request) {
	stream, err := newRunStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := s.sift(r, func(ev pipeline.ProgressEvent) {
		if err := stream.Step(ev); err != nil {
			s.logger.Warn("failed to write step event", slog.Any("error", err))
		}
	})
	if err != nil {
		if werr := stream.Fail(err); werr != nil {
			s.logger.Warn("failed to write error event", slog.Any("error", werr))
		}
		return
	}
	if err := stream.Result(res); err != nil {
		s.logger.Warn("failed to write result events", slog.Any("error", err))
		return
	}
	if err := stream.Complete(res); err != nil {
		s.logger.Warn("failed to write complete event", slog.Any("error", err))
	}
}

// sift reads the request document, runs the pipeline against the current
// configuration and stores the result when a store is configured.
func (s *Server) sift(r *http.Request, onProgress pipeline.ProgressCallback) (*ExtractResponse, error) {
	cfg := s.snapshot.Load()
	collector := pipeline.NewCollector(onProgress)
	engine, err := pipeline.New(pipeline.Deps{
		Config:         cfg,
		ConfigFromFile: s.fromFile.Load(),
		Lexicon:        s.lex,
		Logger:         s.logger.With(slog.String("component", "pipeline")),
		OnProgress:     collector.Callback(),
	})
	if err != nil {
		return nil, err
	}

	doc, err := s.readDocument(r, ingestion.NewSlicer(s.lex, engine.Dates()))
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(r.Context(), *doc)
	if err != nil {
		return nil, err
	}

	out := &ExtractResponse{RunResult: res}
	if s.store != nil {
		// a failed save must not lose the result
		if _, err := s.store.SaveResult(context.WithoutCancel(r.Context()), res, db.StepsFromEvents(collector.Events())); err != nil {
			s.logger.Error("failed to store run", slog.String("run_id", res.RunID), slog.Any("error", err))
		} else {
			out.Stored = true
		}
	}
	return out, nil
}

// readDocument decodes and validates the request body.
func (s *Server) readDocument(r *http.Request, slicer *ingestion.Slicer) (*types.Document, error) {
	format := ingestion.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, badRequest("invalid Content-Type", err)
		}
		var ok bool
		if format, ok = ingestion.FormatFromMediaType(mediaType); !ok {
			return nil, &RequestError{Status: http.StatusUnsupportedMediaType, Message: "unsupported content type " + mediaType}
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, badRequest("failed to read request body", err)
	}
	if len(body) == 0 {
		return nil, badRequest("request body is empty", nil)
	}

	doc, _, err := slicer.ParseDocument(body, format)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(doc); err != nil {
		return nil, badRequest("invalid document", err)
	}
	return doc, nil
}

// handleGetConfig returns the configuration new requests run with
func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.snapshot.Load())
}

// handleReloadConfig re-reads the configuration file. A file that fails to
// load leaves the current configuration in place.
func (s *Server) handleReloadConfig(w http.ResponseWriter, _ *http.Request) {
	if s.configPath == "" {
		s.errorResponse(w, http.StatusConflict, "server was started without a config file")
		return
	}
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.snapshot.Swap(cfg)
	s.fromFile.Store(true)
	s.logger.Info("configuration reloaded", slog.String("path", s.configPath))
	s.jsonResponse(w, http.StatusOK, ReloadResponse{Status: "reloaded", Path: s.configPath})
}
