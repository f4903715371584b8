package config

import "sync/atomic"

// Snapshot holds the current configuration for long-lived processes.
// Readers take one *Config per document and never see it change under them.
type Snapshot struct {
	current atomic.Pointer[Config]
}

// NewSnapshot creates a Snapshot holding cfg.
func NewSnapshot(cfg *Config) *Snapshot {
	s := &Snapshot{}
	if cfg == nil {
		def := Defaults()
		cfg = &def
	}
	s.current.Store(cfg)
	return s
}

// Load returns the current configuration. Callers must not mutate it.
func (s *Snapshot) Load() *Config {
	return s.current.Load()
}

// Swap installs a new configuration and returns the previous one.
func (s *Snapshot) Swap(cfg *Config) *Config {
	return s.current.Swap(cfg)
}
