package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/manju-nlp/manchu-nlp/morph"
)

// Config holds the engine policy knobs. The zero value is not usable; use
// DefaultConfig or LoadConfig.
type Config struct {
	// StrictHarmony makes analysis fail on harmony-invariant words
	// instead of falling back to neutral.
	StrictHarmony bool `yaml:"strict_harmony"`
	// MaxIterations caps the suffix-stripping loop per token.
	MaxIterations int `yaml:"max_iterations"`
	// MaxApplications caps grammar rule applications per sentence.
	// Zero means unbounded.
	MaxApplications int `yaml:"max_applications"`
	// Parallelism bounds concurrent per-token analyses. Zero or one
	// analyzes sequentially.
	Parallelism int `yaml:"parallelism"`
}

// DefaultConfig returns the permissive defaults documented by the engine.
func DefaultConfig() Config {
	return Config{
		StrictHarmony:   false,
		MaxIterations:   morph.DefaultMaxIterations,
		MaxApplications: 0,
		Parallelism:     4,
	}
}

// LoadConfig reads a YAML config file, applying defaults for omitted
// fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("pipeline: reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("pipeline: parsing config: %w", err)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = morph.DefaultMaxIterations
	}
	if cfg.Parallelism < 0 {
		cfg.Parallelism = 0
	}
	return cfg, nil
}
