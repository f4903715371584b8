// Package config provides configuration loading and validation for the sifter pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Validation modes
const (
	ModeStrict = "strict"
	ModeNormal = "normal"
)

// Config is the full tunable surface of the pipeline.
// A loaded Config is treated as immutable; reloading produces a new value.
type Config struct {
	Dates      DatesConfig      `json:"dates" yaml:"dates"`
	Validator  ValidatorConfig  `json:"validator" yaml:"validator"`
	Sieve      SieveConfig      `json:"sieve" yaml:"sieve"`
	Guardrails GuardrailsConfig `json:"guardrails" yaml:"guardrails"`
	Pipeline   PipelineConfig   `json:"pipeline" yaml:"pipeline"`
}

// DatesConfig tunes the date parser.
type DatesConfig struct {
	WindowRadius   int     `json:"window_radius" yaml:"window_radius" validate:"gte=0,lte=10"`
	ContextBoost   float64 `json:"context_boost" yaml:"context_boost" validate:"gte=0,lte=0.5"`
	ContextPenalty float64 `json:"context_penalty" yaml:"context_penalty" validate:"gte=0,lte=0.5"`
	MaxPastYears   int     `json:"max_past_years" yaml:"max_past_years" validate:"gte=1"`
	MaxFutureStart int     `json:"max_future_start" yaml:"max_future_start" validate:"gte=0"`
	MaxFutureEnd   int     `json:"max_future_end" yaml:"max_future_end" validate:"gte=0"`
	CenturyCutoff  int     `json:"century_cutoff" yaml:"century_cutoff" validate:"gte=0,lte=99"`
	OCRTolerance   bool    `json:"ocr_tolerance" yaml:"ocr_tolerance"`
	DedupOverlap   float64 `json:"dedup_overlap" yaml:"dedup_overlap" validate:"gt=0,lte=1"`
	// CurrentYear pins the reference year; 0 means the wall clock
	CurrentYear int `json:"current_year,omitempty" yaml:"current_year,omitempty" validate:"omitempty,gte=1900,lte=2200"`
}

// GateWeights are the point weights of the validator gates.
type GateWeights struct {
	Organization float64 `json:"organization" yaml:"organization" validate:"gte=0,lte=1"`
	Title        float64 `json:"title" yaml:"title" validate:"gte=0,lte=1"`
	Context      float64 `json:"context" yaml:"context" validate:"gte=0,lte=1"`
	Dates        float64 `json:"dates" yaml:"dates" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights.
func (w GateWeights) Sum() float64 {
	return w.Organization + w.Title + w.Context + w.Dates
}

// ValidatorConfig tunes the experience validator.
type ValidatorConfig struct {
	Mode                string      `json:"mode" yaml:"mode" validate:"oneof=strict normal"`
	StrictThreshold     float64     `json:"strict_threshold" yaml:"strict_threshold" validate:"gte=0,lte=1"`
	NormalThreshold     float64     `json:"normal_threshold" yaml:"normal_threshold" validate:"gte=0,lte=1"`
	ContextWindow       int         `json:"context_window" yaml:"context_window" validate:"gte=0,lte=20"`
	Weights             GateWeights `json:"weights" yaml:"weights"`
	ComboBonus          float64     `json:"combo_bonus" yaml:"combo_bonus" validate:"gte=1,lte=2"`
	DensityBonus        float64     `json:"density_bonus" yaml:"density_bonus" validate:"gte=0,lte=0.5"`
	TitleOrgOverlap     float64     `json:"title_org_overlap" yaml:"title_org_overlap" validate:"gt=0,lte=1"`
	MinLexicalDiversity float64     `json:"min_lexical_diversity" yaml:"min_lexical_diversity" validate:"gte=0,lte=1"`
	MinTitleLength      int         `json:"min_title_length" yaml:"min_title_length" validate:"gte=0"`
}

// Threshold returns the acceptance threshold for the configured mode.
func (v ValidatorConfig) Threshold() float64 {
	if v.Mode == ModeStrict {
		return v.StrictThreshold
	}
	return v.NormalThreshold
}

// Strict reports whether strict mode is on.
func (v ValidatorConfig) Strict() bool {
	return v.Mode == ModeStrict
}

// SieveConfig tunes the organization sieve.
type SieveConfig struct {
	SearchRadius        int     `json:"search_radius" yaml:"search_radius" validate:"gte=0,lte=10"`
	ContextRadius       int     `json:"context_radius" yaml:"context_radius" validate:"gte=0,lte=10"`
	EmploymentThreshold float64 `json:"employment_threshold" yaml:"employment_threshold" validate:"gte=0,lte=1"`
	ScoreScale          float64 `json:"score_scale" yaml:"score_scale" validate:"gt=0"`
	KeywordWeight       float64 `json:"keyword_weight" yaml:"keyword_weight" validate:"gte=0"`
	VerbWeight          float64 `json:"verb_weight" yaml:"verb_weight" validate:"gte=0"`
	LexicalConfidence   float64 `json:"lexical_confidence" yaml:"lexical_confidence" validate:"gte=0,lte=1"`
}

// GuardrailsConfig tunes demotion budgets and skew recovery.
type GuardrailsConfig struct {
	MinEvidenceCount      int     `json:"min_evidence_count" yaml:"min_evidence_count" validate:"gte=1,lte=4"`
	StrongEvidenceMinimum int     `json:"strong_evidence_minimum" yaml:"strong_evidence_minimum" validate:"gte=1,lte=4"`
	HardCap               int     `json:"hard_cap" yaml:"hard_cap" validate:"gte=0"`
	ShareCap              float64 `json:"share_cap" yaml:"share_cap" validate:"gte=0,lte=1"`
	PerSchoolCap          int     `json:"per_school_cap" yaml:"per_school_cap" validate:"gte=0"`
	RatioTrigger          float64 `json:"ratio_trigger" yaml:"ratio_trigger" validate:"gt=0"`
	FloorThreshold        int     `json:"floor_threshold" yaml:"floor_threshold" validate:"gte=0"`
	BandLow               float64 `json:"band_low" yaml:"band_low" validate:"gte=0,lte=1"`
	BandHigh              float64 `json:"band_high" yaml:"band_high" validate:"gte=0,lte=1,gtefield=BandLow"`
	RecoveryCap           int     `json:"recovery_cap" yaml:"recovery_cap" validate:"gte=0"`
	RecoveryBoost         float64 `json:"recovery_boost" yaml:"recovery_boost" validate:"gte=0,lte=0.5"`
}

// PipelineConfig tunes orchestration.
type PipelineConfig struct {
	// Workers bounds per-document candidate validation parallelism
	Workers int  `json:"workers" yaml:"workers" validate:"gte=1,lte=64"`
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// Defaults returns the built-in conservative configuration.
func Defaults() Config {
	return Config{
		Dates: DatesConfig{
			WindowRadius:   2,
			ContextBoost:   0.10,
			ContextPenalty: 0.10,
			MaxPastYears:   80,
			MaxFutureStart: 1,
			MaxFutureEnd:   5,
			CenturyCutoff:  50,
			OCRTolerance:   true,
			DedupOverlap:   0.6,
		},
		Validator: ValidatorConfig{
			Mode:            ModeNormal,
			StrictThreshold: 0.70,
			NormalThreshold: 0.60,
			ContextWindow:   4,
			Weights: GateWeights{
				Organization: 0.35,
				Title:        0.25,
				Context:      0.35,
				Dates:        0.10,
			},
			ComboBonus:          1.15,
			DensityBonus:        0.12,
			TitleOrgOverlap:     0.70,
			MinLexicalDiversity: 0.4,
			MinTitleLength:      15,
		},
		Sieve: SieveConfig{
			SearchRadius:        2,
			ContextRadius:       3,
			EmploymentThreshold: 0.5,
			ScoreScale:          10,
			KeywordWeight:       1.0,
			VerbWeight:          0.8,
			LexicalConfidence:   0.5,
		},
		Guardrails: GuardrailsConfig{
			MinEvidenceCount:      2,
			StrongEvidenceMinimum: 2,
			HardCap:               3,
			ShareCap:              0.30,
			PerSchoolCap:          2,
			RatioTrigger:          3.0,
			FloorThreshold:        5,
			BandLow:               0.45,
			BandHigh:              0.60,
			RecoveryCap:           3,
			RecoveryBoost:         0.05,
		},
		Pipeline: PipelineConfig{
			Workers: 4,
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file.
// Values present in the file override the defaults; everything else keeps its default.
// Returns an error if the file cannot be read, parsed or validated.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &LoadError{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, &LoadError{Message: "failed to get current directory", Cause: err}
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes config bytes. ext selects the format (".yaml"/".yml" or JSON otherwise).
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Defaults()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, &LoadError{Message: "failed to parse config YAML", Cause: err}
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, &LoadError{Message: "failed to parse config JSON", Cause: err}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path and falls back to Defaults on any problem.
// The boolean reports whether the file was used. An empty path silently yields defaults.
func LoadOrDefault(path string, logger *slog.Logger) (*Config, bool) {
	if path == "" {
		cfg := Defaults()
		return &cfg, false
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("config unavailable, using built-in defaults", slog.String("path", path), slog.Any("error", err))
		def := Defaults()
		return &def, false
	}
	return cfg, true
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &InvalidError{Message: "field constraints not met", Cause: err}
	}
	if c.Validator.Weights.Sum() <= 0 {
		return &InvalidError{Message: "validator weights must not all be zero"}
	}
	if c.Dates.MaxFutureEnd < c.Dates.MaxFutureStart {
		return &InvalidError{Message: "dates.max_future_end must be >= dates.max_future_start"}
	}
	return nil
}
