package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// ErrInvalid is returned (wrapped) when a configured value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// StelliumConfig tunes the stellium detector.
type StelliumConfig struct {
	Orb             float64 `mapstructure:"orb"`
	MaxSize         int     `mapstructure:"max_size"`
	Epsilon         float64 `mapstructure:"epsilon"`
	PrefilterFactor float64 `mapstructure:"prefilter_factor"`
}

// PrefilterConfig controls the geometric pre-filter chains.
type PrefilterConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	OppositionWindow float64 `mapstructure:"opposition_window"`
}

// InputConfig names the scan input sources.
type InputConfig struct {
	Aspects string `mapstructure:"aspects"`
	DB      string `mapstructure:"db"`
}

// OutputConfig names the scan outputs.
type OutputConfig struct {
	Events string `mapstructure:"events"`
}

// Config holds all runtime configuration for a scan.
// Values are populated from .syzygy.yaml, SYZYGY_* env vars, and CLI flags.
type Config struct {
	Step      time.Duration   `mapstructure:"step"`
	Workers   int             `mapstructure:"workers"`
	Patterns  []string        `mapstructure:"patterns"`
	Stellium  StelliumConfig  `mapstructure:"stellium"`
	Prefilter PrefilterConfig `mapstructure:"prefilter"`
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Verbose   bool            `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("step", time.Minute)
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("patterns", []string{})
	viper.SetDefault("stellium.orb", sky.Conjunct.Orb())
	viper.SetDefault("stellium.max_size", 12)
	viper.SetDefault("stellium.epsilon", 0.01)
	viper.SetDefault("stellium.prefilter_factor", 1.5)
	viper.SetDefault("prefilter.enabled", true)
	viper.SetDefault("prefilter.opposition_window", float64(pattern.DefaultOppositionWindow))
	viper.SetDefault("input.aspects", "")
	viper.SetDefault("input.db", "")
	viper.SetDefault("output.events", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and pattern names.
func (c Config) Validate() error {
	switch {
	case c.Step <= 0:
		return fmt.Errorf("config: step %s: %w", c.Step, ErrInvalid)
	case c.Workers < 1:
		return fmt.Errorf("config: workers %d: %w", c.Workers, ErrInvalid)
	case c.Stellium.Orb <= 0:
		return fmt.Errorf("config: stellium.orb %v: %w", c.Stellium.Orb, ErrInvalid)
	case c.Stellium.MaxSize < 3:
		return fmt.Errorf("config: stellium.max_size %d: %w", c.Stellium.MaxSize, ErrInvalid)
	case c.Stellium.PrefilterFactor < 1:
		return fmt.Errorf("config: stellium.prefilter_factor %v: %w", c.Stellium.PrefilterFactor, ErrInvalid)
	}
	if _, err := c.PatternKinds(); err != nil {
		return err
	}
	return nil
}

// PatternKinds resolves the configured pattern names. An empty list means
// every pattern.
func (c Config) PatternKinds() ([]sky.PatternKind, error) {
	out := make([]sky.PatternKind, 0, len(c.Patterns))
	for _, name := range c.Patterns {
		k, err := sky.ParsePattern(name)
		if err != nil {
			return nil, fmt.Errorf("config: patterns: %w", err)
		}
		out = append(out, k)
	}
	return out, nil
}

// DetectorOptions maps the configuration onto detector construction
// options.
func (c Config) DetectorOptions() pattern.Options {
	return pattern.Options{
		Prefilter:        c.Prefilter.Enabled,
		OppositionWindow: c.Prefilter.OppositionWindow,
		Stellium: pattern.StelliumOptions{
			Orb:             c.Stellium.Orb,
			MaxSize:         c.Stellium.MaxSize,
			Epsilon:         c.Stellium.Epsilon,
			PrefilterFactor: c.Stellium.PrefilterFactor,
		},
	}
}
