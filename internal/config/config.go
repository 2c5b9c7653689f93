// Package config parses the engine's tuning knobs from the environment.
// Knobs are captured into each session at construction time; nothing reads
// them live mid-session.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// #region config

// Config holds every knob the core recognizes, and nothing else.
//
// The algorithmic contract uses an SE threshold of 0.3; the deployed
// experiment overrides it to 0.65 via DOSE_SE_THRESHOLD. Both are plain
// values of the same knob.
type Config struct {
	SEThreshold      float64 `env:"DOSE_SE_THRESHOLD" envDefault:"0.3"`
	MaxItemsPerTrait int     `env:"DOSE_MAX_ITEMS_PER_TRAIT" envDefault:"4"`
	ThetaMin         float64 `env:"THETA_MIN" envDefault:"-4"`
	ThetaMax         float64 `env:"THETA_MAX" envDefault:"4"`
	ThetaPoints      int     `env:"THETA_POINTS" envDefault:"161"`
}

// Default returns the algorithmic reference configuration.
func Default() Config {
	return Config{
		SEThreshold:      0.3,
		MaxItemsPerTrait: 4,
		ThetaMin:         -4,
		ThetaMax:         4,
		ThetaPoints:      161,
	}
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the grid and stopping constraints from the contract:
// at least 21 grid points, step at most 0.1, positive SE threshold, and a
// per-trait cap between 1 and the trait subset size.
func (c Config) Validate() error {
	if c.SEThreshold <= 0 {
		return fmt.Errorf("config: SE threshold %.4f must be positive", c.SEThreshold)
	}
	if c.MaxItemsPerTrait < 1 || c.MaxItemsPerTrait > 4 {
		return fmt.Errorf("config: max items per trait %d must be in 1..4", c.MaxItemsPerTrait)
	}
	if c.ThetaMax <= c.ThetaMin {
		return fmt.Errorf("config: theta max %.2f must exceed min %.2f", c.ThetaMax, c.ThetaMin)
	}
	if c.ThetaPoints < 21 {
		return fmt.Errorf("config: %d theta points, need at least 21", c.ThetaPoints)
	}
	if step := (c.ThetaMax - c.ThetaMin) / float64(c.ThetaPoints-1); step > 0.1 {
		return fmt.Errorf("config: grid step %.4f exceeds 0.1", step)
	}
	return nil
}

// #endregion config
