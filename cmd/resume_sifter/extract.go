package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-sifter/internal/db"
	"github.com/jonathan/resume-sifter/internal/ingestion"
	"github.com/jonathan/resume-sifter/internal/llm"
	"github.com/jonathan/resume-sifter/internal/logging"
	"github.com/jonathan/resume-sifter/internal/observability"
	"github.com/jonathan/resume-sifter/internal/pipeline"
	"github.com/jonathan/resume-sifter/internal/schemas"
	"github.com/jonathan/resume-sifter/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sift a résumé into per-section records",
	Long: `Reads a résumé (.json document, .txt/.md text or .html, from a file or a URL), sifts its candidates and
writes the run result as JSON. Text and HTML inputs are sliced into candidates by section headings.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

var (
	extractInput       string
	extractURL         string
	extractOutput      string
	extractVerbose     bool
	extractMarkdown    bool
	extractEntities    bool
	extractDatabaseURL string
)

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path to the résumé file")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Fetch the résumé from an http(s) URL instead of a file")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Write the run result to this file instead of stdout")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print progress and the report to stderr")
	extractCmd.Flags().BoolVar(&extractMarkdown, "markdown", false, "Render verbose tables as Markdown")
	extractCmd.Flags().BoolVar(&extractEntities, "entities", false, "Annotate lines with Gemini entity hints (needs GEMINI_API_KEY)")
	extractCmd.Flags().StringVar(&extractDatabaseURL, "database-url", "", "Store the run in PostgreSQL (defaults to DATABASE_URL)")

	extractCmd.MarkFlagsOneRequired("in", "url")
	extractCmd.MarkFlagsMutuallyExclusive("in", "url")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var printer *observability.Printer
	var onProgress pipeline.ProgressCallback
	if extractVerbose {
		var opts []observability.Option
		if extractMarkdown {
			opts = append(opts, observability.WithMarkdown())
		}
		printer = observability.NewPrinter(cmd.ErrOrStderr(), opts...)
		onProgress = func(ev pipeline.ProgressEvent) {
			printer.PrintProgress(ev.Step, ev.Message, ev.DurationMs)
		}
	}
	collector := pipeline.NewCollector(onProgress)

	engine, lex, err := newEngine(collector.Callback())
	if err != nil {
		return err
	}
	var doc *types.Document
	var meta *ingestion.Metadata
	if extractURL != "" {
		doc, meta, err = ingestion.NewSlicer(lex, engine.Dates()).FetchDocument(ctx, extractURL, nil)
	} else {
		doc, meta, err = loadDocument(engine, lex, extractInput)
	}
	if err != nil {
		return err
	}
	if extractVerbose && meta.Sliced {
		fmt.Fprintf(cmd.ErrOrStderr(), "Sliced %d candidates from %d lines\n", meta.Candidates, meta.Lines)
	}

	if extractEntities {
		hints, err := extractEntityHints(ctx, doc.Lines)
		if err != nil {
			return err
		}
		doc.Entities = append(doc.Entities, hints...)
	}

	res, err := engine.Run(ctx, *doc)
	if err != nil {
		return fmt.Errorf("sifting failed: %w", err)
	}
	if err := schemas.ValidateRunResult(res); err != nil {
		return fmt.Errorf("run result failed schema validation: %w", err)
	}

	if err := writeJSON(cmd.OutOrStdout(), extractOutput, res); err != nil {
		return err
	}

	if printer != nil {
		printer.PrintSummary(res)
		printer.PrintSections(res)
		printer.PrintReport(res.Report)
	}

	databaseURL := extractDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL != "" {
		if err := storeResult(ctx, databaseURL, res, collector.Events()); err != nil {
			return err
		}
	}
	return nil
}

// extractEntityHints asks Gemini for entity hints on lines.
func extractEntityHints(ctx context.Context, lines []string) ([]types.EntityHint, error) {
	apiKey := os.Getenv(llm.EnvAPIKey)
	if apiKey == "" {
		return nil, errors.New("--entities requires " + llm.EnvAPIKey)
	}
	client, err := llm.NewGeminiClient(ctx, llm.ConfigFromEnv(), apiKey)
	if err != nil {
		return nil, err
	}
	defer client.Close() //nolint:errcheck // best-effort cleanup

	extractor := llm.NewEntityExtractor(client, llm.WithLogger(logging.New("llm")))
	return extractor.Extract(ctx, lines)
}

// storeResult saves res with its step timings.
func storeResult(ctx context.Context, databaseURL string, res *types.RunResult, events []pipeline.ProgressEvent) error {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	id, err := database.SaveResult(ctx, res, db.StepsFromEvents(events))
	if err != nil {
		return err
	}
	logging.New("cli").Info("run stored", "run_id", id.String())
	return nil
}
