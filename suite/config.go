// Package suite provides loading and parsing of evaluation suite
// configuration files. A suite defines the frozen opponent ladder, the
// number of games played per tier, the Elo constants, and the regression
// and gate thresholds applied to every evaluation run.
package suite

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Tier type constants for TierConfig.Type.
const (
	// TierScripted is a rule-based opponent with no learned weights.
	TierScripted = "scripted"

	// TierCheckpoint is a frozen learned policy pinned at a fixed step.
	TierCheckpoint = "checkpoint"
)

// Config represents a suite.yaml evaluation configuration.
// This is the single source of truth for how a checkpoint is scored.
type Config struct {
	// Identity
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// GamesPerOpponent is the number of games played against each ready
	// tier. Default: 50.
	GamesPerOpponent int `yaml:"games_per_opponent,omitempty"`

	// KickoffWindowSeconds is the window after a kickoff within which a
	// conceded goal counts as a kickoff concede. Default: 3.0.
	KickoffWindowSeconds float64 `yaml:"kickoff_window_seconds,omitempty"`

	// Concurrency is the number of games simulated in parallel across
	// all tiers. Default: 4.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Elo holds the rating update constants.
	Elo *EloConfig `yaml:"elo,omitempty"`

	// Regression holds the thresholds used by the regression detector.
	Regression *RegressionConfig `yaml:"regression,omitempty"`

	// Gates holds the absolute quality gates a checkpoint must clear for
	// promotion, independent of the regression trend checks.
	Gates *GatesConfig `yaml:"gates,omitempty"`

	// CustomRules are optional CEL expressions evaluated against the
	// current and previous evaluation. A rule that evaluates to true
	// flags a regression with the rule text as the reason.
	CustomRules []string `yaml:"custom_rules,omitempty"`

	// Tiers is the ordered frozen opponent ladder.
	Tiers []TierConfig `yaml:"tiers"`
}

// EloConfig defines the rating update constants for a suite.
type EloConfig struct {
	// KFactor is the Elo update sensitivity constant. Default: 32.
	KFactor float64 `yaml:"k_factor,omitempty"`

	// InitialRating is the rating assigned to a lineage (and to any
	// learned tier without history) before its first evaluation.
	// Default: 1000.
	InitialRating float64 `yaml:"initial_rating,omitempty"`
}

// RegressionConfig defines the thresholds used by the regression detector.
// All thresholds compare the current evaluation against the immediately
// preceding one for the same lineage.
type RegressionConfig struct {
	// RatingDrop is the maximum tolerated single-evaluation rating loss.
	// Default: 15.
	RatingDrop float64 `yaml:"rating_drop,omitempty"`

	// WinrateDrop is the maximum tolerated per-tier winrate decrease,
	// expressed as a fraction. Default: 0.10.
	WinrateDrop float64 `yaml:"winrate_drop,omitempty"`

	// KickoffRateRise is the maximum tolerated increase in the per-game
	// kickoff concede rate. Default: 0.05.
	KickoffRateRise float64 `yaml:"kickoff_rate_rise,omitempty"`

	// WinrateFloor is the minimum acceptable winrate against any tier,
	// checked regardless of trend. Default: 0.30.
	WinrateFloor float64 `yaml:"winrate_floor,omitempty"`
}

// GatesConfig defines the absolute promotion gates.
type GatesConfig struct {
	// MinWinRate is the minimum overall winrate across all tiers.
	// Default: 0.55.
	MinWinRate float64 `yaml:"min_win_rate,omitempty"`

	// MaxOwnGoalRate is the maximum tolerated own goals per game.
	// Default: 0.03.
	MaxOwnGoalRate float64 `yaml:"max_own_goal_rate,omitempty"`

	// MaxOpenNetConcedeRate is the maximum tolerated open-net concedes
	// per game. Default: 0.10.
	MaxOpenNetConcedeRate float64 `yaml:"max_open_net_concede_rate,omitempty"`
}

// TierConfig describes one frozen opponent in the ladder.
type TierConfig struct {
	// Name is the stable tier identifier (e.g. "baseline", "nexto").
	Name string `yaml:"name"`

	// Type is TierScripted or TierCheckpoint.
	Type string `yaml:"type"`

	// Description is a human-readable description shown on the dashboard.
	Description string `yaml:"description,omitempty"`

	// FixedElo pins the tier's rating by convention instead of tracking a
	// learned rating (e.g. a scripted baseline fixed at 1000).
	FixedElo *float64 `yaml:"fixed_elo,omitempty"`

	// CheckpointPath locates the frozen weights for checkpoint tiers.
	CheckpointPath string `yaml:"checkpoint_path,omitempty"`

	// Ready reports whether the tier has a usable checkpoint or script.
	// Tiers that are not ready are skipped by the evaluator.
	Ready bool `yaml:"ready"`
}

// GetGamesPerOpponent returns the configured game count or the default.
func (c *Config) GetGamesPerOpponent() int {
	if c.GamesPerOpponent == 0 {
		return 50
	}
	return c.GamesPerOpponent
}

// GetKickoffWindowSeconds returns the kickoff window or the default.
func (c *Config) GetKickoffWindowSeconds() float64 {
	if c.KickoffWindowSeconds == 0 {
		return 3.0
	}
	return c.KickoffWindowSeconds
}

// GetConcurrency returns the configured parallelism or the default.
func (c *Config) GetConcurrency() int {
	if c.Concurrency == 0 {
		return 4
	}
	return c.Concurrency
}

// GetKFactor returns the Elo K constant or the default.
func (c *Config) GetKFactor() float64 {
	if c.Elo == nil || c.Elo.KFactor == 0 {
		return 32
	}
	return c.Elo.KFactor
}

// GetInitialRating returns the initial lineage rating or the default.
func (c *Config) GetInitialRating() float64 {
	if c.Elo == nil || c.Elo.InitialRating == 0 {
		return 1000
	}
	return c.Elo.InitialRating
}

// GetRatingDrop returns the rating drop threshold or the default.
func (c *Config) GetRatingDrop() float64 {
	if c.Regression == nil || c.Regression.RatingDrop == 0 {
		return 15
	}
	return c.Regression.RatingDrop
}

// GetWinrateDrop returns the winrate drop threshold or the default.
func (c *Config) GetWinrateDrop() float64 {
	if c.Regression == nil || c.Regression.WinrateDrop == 0 {
		return 0.10
	}
	return c.Regression.WinrateDrop
}

// GetKickoffRateRise returns the kickoff concede rise threshold or the default.
func (c *Config) GetKickoffRateRise() float64 {
	if c.Regression == nil || c.Regression.KickoffRateRise == 0 {
		return 0.05
	}
	return c.Regression.KickoffRateRise
}

// GetWinrateFloor returns the absolute winrate floor or the default.
func (c *Config) GetWinrateFloor() float64 {
	if c.Regression == nil || c.Regression.WinrateFloor == 0 {
		return 0.30
	}
	return c.Regression.WinrateFloor
}

// GetMinWinRate returns the promotion gate winrate floor or the default.
func (c *Config) GetMinWinRate() float64 {
	if c.Gates == nil || c.Gates.MinWinRate == 0 {
		return 0.55
	}
	return c.Gates.MinWinRate
}

// GetMaxOwnGoalRate returns the own-goal gate ceiling or the default.
func (c *Config) GetMaxOwnGoalRate() float64 {
	if c.Gates == nil || c.Gates.MaxOwnGoalRate == 0 {
		return 0.03
	}
	return c.Gates.MaxOwnGoalRate
}

// GetMaxOpenNetConcedeRate returns the open-net gate ceiling or the default.
func (c *Config) GetMaxOpenNetConcedeRate() float64 {
	if c.Gates == nil || c.Gates.MaxOpenNetConcedeRate == 0 {
		return 0.10
	}
	return c.Gates.MaxOpenNetConcedeRate
}

// Load reads and parses a suite configuration file from the given path.
// The configuration is validated before being returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse suite config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite config %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir searches for suite.yaml or suite.yml in the current
// directory and loads it.
func LoadFromCurrentDir() (*Config, error) {
	for _, name := range []string{"suite.yaml", "suite.yml"} {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, fmt.Errorf("no suite.yaml found in current directory")
}

// Validate checks the configuration for correctness.
// Negative counts and malformed thresholds are rejected here, before any
// simulator is ever invoked.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if c.GamesPerOpponent < 0 {
		return fmt.Errorf("games_per_opponent must be positive, got %d", c.GamesPerOpponent)
	}
	if c.KickoffWindowSeconds < 0 {
		return fmt.Errorf("kickoff_window_seconds must be positive, got %g", c.KickoffWindowSeconds)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Elo != nil && c.Elo.KFactor < 0 {
		return fmt.Errorf("elo.k_factor must be positive, got %g", c.Elo.KFactor)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}

	seen := make(map[string]bool, len(c.Tiers))
	for i, tier := range c.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier %d: name is required", i)
		}
		if seen[tier.Name] {
			return fmt.Errorf("duplicate tier name %q", tier.Name)
		}
		seen[tier.Name] = true

		switch tier.Type {
		case TierScripted:
		case TierCheckpoint:
			if tier.CheckpointPath == "" {
				return fmt.Errorf("tier %q: checkpoint_path is required for checkpoint tiers", tier.Name)
			}
		default:
			return fmt.Errorf("tier %q: unknown type %q (expected %q or %q)",
				tier.Name, tier.Type, TierScripted, TierCheckpoint)
		}

		if tier.FixedElo != nil && *tier.FixedElo <= 0 {
			return fmt.Errorf("tier %q: fixed_elo must be positive, got %g", tier.Name, *tier.FixedElo)
		}
	}

	return nil
}
