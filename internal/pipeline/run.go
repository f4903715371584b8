// Package pipeline provides the high-level orchestration of one sifting run:
// routing, validation, organization rebinding, guardrails, dedup and report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/dates"
	"github.com/jonathan/resume-sifter/internal/guardrails"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/logging"
	"github.com/jonathan/resume-sifter/internal/pipeline/steps"
	"github.com/jonathan/resume-sifter/internal/routing"
	"github.com/jonathan/resume-sifter/internal/sieve"
	"github.com/jonathan/resume-sifter/internal/types"
	"github.com/jonathan/resume-sifter/internal/validation"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step       string `json:"step"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	RunID      string `json:"run_id,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Content    any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Deps holds everything a run needs. Zero values select the defaults.
type Deps struct {
	Config *config.Config
	// ConfigFromFile is reported back so callers can tell defaults from a loaded file
	ConfigFromFile bool
	Lexicon        *lexicon.Lexicon
	Clock          dates.Clock
	Logger         *slog.Logger
	OnProgress     ProgressCallback
}

// Engine holds the constructed components for repeated runs. Every component
// is immutable, so one Engine may serve concurrent runs.
type Engine struct {
	cfg        *config.Config
	fromFile   bool
	lex        *lexicon.Lexicon
	dates      *dates.Parser
	router     *routing.Router
	validator  validation.Interface
	sieve      *sieve.Sieve
	guardrails *guardrails.Guardrails
	logger     *slog.Logger
	onProgress ProgressCallback
}

// New builds an Engine. It fails only when no lexicon can be loaded; a
// validator that cannot be built is replaced by the fallback validator.
func New(deps Deps) (*Engine, error) {
	cfg := deps.Config
	if cfg == nil {
		def := config.Defaults()
		cfg = &def
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.New("pipeline")
	}
	lex := deps.Lexicon
	if lex == nil {
		var err error
		if lex, err = lexicon.Load(); err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
	}

	dp := dates.NewParser(cfg.Dates,
		dates.WithClock(deps.Clock),
		dates.WithCues(func(line string) bool {
			return lex.Has(lexicon.Role, line) || lex.Has(lexicon.OrgSuffix, line)
		}))
	router := routing.New(lex, dp)
	sv := sieve.New(cfg.Sieve, lex)

	return &Engine{
		cfg:        cfg,
		fromFile:   deps.ConfigFromFile,
		lex:        lex,
		dates:      dp,
		router:     router,
		validator:  validation.Build(cfg.Validator, lex, dp, router, logger),
		sieve:      sv,
		guardrails: guardrails.New(cfg.Guardrails, lex, sv, guardrails.WithLogger(logger.With(slog.String("component", "guardrails")))),
		logger:     logger,
		onProgress: deps.OnProgress,
	}, nil
}

// Run sifts one document with a freshly built Engine.
func Run(ctx context.Context, doc types.Document, deps Deps) (*types.RunResult, error) {
	e, err := New(deps)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, doc)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Dates returns the engine's date parser.
func (e *Engine) Dates() *dates.Parser {
	return e.dates
}

// Router returns the engine's router.
func (e *Engine) Router() *routing.Router {
	return e.router
}

// FallbackActive reports whether the full validator could not be built.
func (e *Engine) FallbackActive() bool {
	return validation.IsFallback(e.validator)
}

// Run sifts one document. Content problems never produce an error; only
// context cancellation does.
func (e *Engine) Run(ctx context.Context, doc types.Document) (*types.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID))
	tracker := steps.NewTracker()

	run := func(step string, fn func() (string, error)) error {
		if err := tracker.Start(step); err != nil {
			return err
		}
		start := time.Now()
		msg, err := fn()
		if err != nil {
			return err
		}
		tracker.Complete(step)
		dur := time.Since(start)
		logger.Debug("step completed", slog.String("step", step), slog.Duration("duration", dur))
		e.emit(ProgressEvent{
			Step:       step,
			Category:   steps.StepRegistry[step].Category,
			Message:    msg,
			RunID:      runID,
			DurationMs: dur.Milliseconds(),
		})
		return nil
	}

	var (
		items    []guardrails.Item
		outcome  guardrails.Outcome
		sections map[types.ContentType][]types.Record
		rebinds  int
		removed  int
		report   types.Report
	)

	err := run(steps.StepRoute, func() (string, error) {
		items = e.route(doc.Candidates, doc.Lines)
		return fmt.Sprintf("Routed %d candidates", len(items)), nil
	})
	if err == nil {
		err = run(steps.StepValidate, func() (string, error) {
			n, err := e.validateAll(ctx, doc.Lines, items)
			return fmt.Sprintf("Validated %d experience candidates", n), err
		})
	}
	if err == nil {
		err = run(steps.StepRebind, func() (string, error) {
			rebinds = e.rebindAll(doc, items, logger)
			return fmt.Sprintf("Rebound %d organizations", rebinds), ctx.Err()
		})
	}
	if err == nil {
		err = run(steps.StepGuardrails, func() (string, error) {
			outcome = e.guardrails.Run(guardrails.Snapshot{Lines: doc.Lines, Items: items})
			return fmt.Sprintf("Applied %d guardrail decisions", len(outcome.Decisions)), ctx.Err()
		})
	}
	if err == nil {
		err = run(steps.StepDedup, func() (string, error) {
			sections, removed = buildSections(outcome.Items)
			return fmt.Sprintf("Removed %d duplicates", removed), nil
		})
	}
	if err == nil {
		err = run(steps.StepReport, func() (string, error) {
			report = e.buildReport(doc, outcome, sections, rebinds, removed)
			return fmt.Sprintf("Accepted %d experience entries", report.Accepted), nil
		})
	}
	if err != nil {
		return nil, err
	}

	logger.Info("run completed",
		slog.Int("candidates", report.Candidates),
		slog.Int("accepted", report.Accepted),
		slog.Int("decisions", len(report.Decisions)),
		slog.Int("alerts", len(report.Alerts)))

	return &types.RunResult{
		RunID:      runID,
		DocumentID: doc.ID,
		Sections:   sections,
		Report:     report,
	}, nil
}

// emit calls the progress callback if configured
func (e *Engine) emit(ev ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(ev)
	}
}

// validateAll validates every experience candidate in parallel. Each worker
// writes only its own slot, so the result does not depend on scheduling.
func (e *Engine) validateAll(ctx context.Context, lines []string, items []guardrails.Item) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.Pipeline.Workers, 1))

	n := 0
	for i := range items {
		if items[i].Candidate.Section != types.ContentExperience {
			continue
		}
		n++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = e.validateOne(lines, items[i])
			return nil
		})
	}
	return n, g.Wait()
}
