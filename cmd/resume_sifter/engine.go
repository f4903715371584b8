package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/ingestion"
	"github.com/jonathan/resume-sifter/internal/lexicon"
	"github.com/jonathan/resume-sifter/internal/logging"
	"github.com/jonathan/resume-sifter/internal/pipeline"
	"github.com/jonathan/resume-sifter/internal/types"
)

// newEngine builds a pipeline engine from the --config flag. A config file
// that cannot be used falls back to the defaults with a warning.
func newEngine(onProgress pipeline.ProgressCallback) (*pipeline.Engine, *lexicon.Lexicon, error) {
	logger := logging.New("cli")
	cfg, fromFile := config.LoadOrDefault(configPath, logger)
	lex, err := lexicon.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	engine, err := pipeline.New(pipeline.Deps{
		Config:         cfg,
		ConfigFromFile: fromFile,
		Lexicon:        lex,
		Logger:         logging.New("pipeline"),
		OnProgress:     onProgress,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, lex, nil
}

// loadDocument reads a résumé file, slicing plain text and HTML into candidates.
func loadDocument(engine *pipeline.Engine, lex *lexicon.Lexicon, path string) (*types.Document, *ingestion.Metadata, error) {
	slicer := ingestion.NewSlicer(lex, engine.Dates())
	doc, meta, err := slicer.LoadDocument(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, meta, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
