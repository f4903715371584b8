// Package llm wraps the optional Gemini backend used to annotate résumé
// lines with entity hints before sifting.
package llm

import (
	"maps"
	"os"
)

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for short line-level annotation
	TierLite ModelTier = "lite"
	// TierStandard is for whole-document annotation
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for noisy or very long documents
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the only supported provider.
const ProviderGemini Provider = "gemini"

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvModel  = "SIFTER_LLM_MODEL"
)

// Config holds the model configuration
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// ConfigFromEnv returns the default configuration with the standard tier
// overridden by SIFTER_LLM_MODEL when set.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if model := os.Getenv(EnvModel); model != "" {
		cfg = cfg.WithModel(TierStandard, model)
	}
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of c with model assigned to tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{Provider: c.Provider, Models: maps.Clone(c.Models)}
	if out.Models == nil {
		out.Models = make(map[ModelTier]string)
	}
	out.Models[tier] = model
	return out
}
