// Package config defines the optimizer's configuration and its loading.
//
// Conventions:
// - Defaults come from New(); Load layers a YAML file and env vars on top.
// - Sections mirror the pipeline stages: classifier, portfolio, optimizer,
//   validator and output.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/progol/internal/domain/types"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	Classifier Classifier `koanf:"classifier"`
	Portfolio  Portfolio  `koanf:"portfolio"`
	Optimizer  Optimizer  `koanf:"optimizer"`
	Validator  Validator  `koanf:"validator"`
	Output     Output     `koanf:"output"`
}

// Classifier holds calibration weights and category thresholds.
type Classifier struct {
	FormWeight     float64 `koanf:"form_weight"`
	InjuryWeight   float64 `koanf:"injury_weight"`
	DecisiveWeight float64 `koanf:"decisive_weight"`

	AnchorMin     float64 `koanf:"anchor_min"`
	AnchorGap     float64 `koanf:"anchor_gap"`
	DrawMin       float64 `koanf:"draw_min"`
	DivisorMin    float64 `koanf:"divisor_min"`
	DivisorMax    float64 `koanf:"divisor_max"`
	VolatileGap   float64 `koanf:"volatile_gap"`
	DrawCloseness float64 `koanf:"draw_closeness"`
	DrawBoost     float64 `koanf:"draw_boost"`
	DrawCap       float64 `koanf:"draw_cap"`
}

// Portfolio controls core and satellite generation.
type Portfolio struct {
	CoreCount     int `koanf:"core_count"`
	MinDraws      int `koanf:"min_draws"`
	MaxDraws      int `koanf:"max_draws"`
	Perturbations int `koanf:"perturbations"`
}

// Optimizer holds the GRASP and annealing settings.
type Optimizer struct {
	Iterations         int     `koanf:"iterations"`
	InitialTemperature float64 `koanf:"initial_temperature"`
	CoolingRate        float64 `koanf:"cooling_rate"`
	TargetSize         int     `koanf:"target_size"`
	CandidatePool      int     `koanf:"candidate_pool"`
	RCLAlpha           float64 `koanf:"rcl_alpha"`
	SelectAlpha        float64 `koanf:"select_alpha"`
	ProgressEvery      int     `koanf:"progress_every"`
	MaxFlips           int     `koanf:"max_flips"`
	Seed               int64   `koanf:"seed"`
	FeasibilityDescent bool    `koanf:"feasibility_descent"`
	DedupeSize         int     `koanf:"dedupe_size"`
}

// Validator holds the portfolio constraints.
type Validator struct {
	HomeBand types.Band `koanf:"home_band"`
	DrawBand types.Band `koanf:"draw_band"`
	AwayBand types.Band `koanf:"away_band"`

	// InitialCap applies to the first InitialMatches matches, GeneralCap
	// to the rest.
	InitialCap     float64 `koanf:"initial_cap"`
	GeneralCap     float64 `koanf:"general_cap"`
	InitialMatches int     `koanf:"initial_matches"`

	// ExemptAnchors lifts the concentration cap on Anchor matches.
	ExemptAnchors bool    `koanf:"exempt_anchors"`
	TicketCost    float64 `koanf:"ticket_cost"`
}

// Output controls exports and progress reporting.
type Output struct {
	Dir            string   `koanf:"dir"`
	Formats        []string `koanf:"formats"`
	MetricsFile    string   `koanf:"metrics_file"`
	ProgressBuffer int      `koanf:"progress_buffer"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Classifier: Classifier{
			FormWeight:     0.15,
			InjuryWeight:   0.10,
			DecisiveWeight: 0.20,
			AnchorMin:      0.60,
			AnchorGap:      0.20,
			DrawMin:        0.30,
			DivisorMin:     0.40,
			DivisorMax:     0.60,
			VolatileGap:    0.10,
			DrawCloseness:  0.08,
			DrawBoost:      0.06,
			DrawCap:        0.95,
		},
		Portfolio: Portfolio{
			CoreCount:     4,
			MinDraws:      4,
			MaxDraws:      6,
			Perturbations: 200,
		},
		Optimizer: Optimizer{
			Iterations:         5000,
			InitialTemperature: 0.80,
			CoolingRate:        0.995,
			TargetSize:         20,
			CandidatePool:      1000,
			RCLAlpha:           0.25,
			SelectAlpha:        0.15,
			ProgressEvery:      50,
			MaxFlips:           3,
			Seed:               42,
			FeasibilityDescent: true,
			DedupeSize:         50_000,
		},
		Validator: Validator{
			HomeBand:       types.Band{Min: 0.35, Max: 0.41},
			DrawBand:       types.Band{Min: 0.25, Max: 0.33},
			AwayBand:       types.Band{Min: 0.30, Max: 0.36},
			InitialCap:     0.60,
			GeneralCap:     0.70,
			InitialMatches: 3,
			ExemptAnchors:  true,
			TicketCost:     15,
		},
		Output: Output{
			Dir:            "out",
			Formats:        []string{"csv", "json", "txt"},
			ProgressBuffer: 64,
		},
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q, want text or json", ErrInvalidConfig, c.LogFormat)
	case c.Portfolio.CoreCount < 1 || c.Portfolio.CoreCount > 4:
		return fmt.Errorf("%w: portfolio.core_count %d outside [1, 4]", ErrInvalidConfig, c.Portfolio.CoreCount)
	case c.Portfolio.MinDraws < 0 || c.Portfolio.MaxDraws < c.Portfolio.MinDraws:
		return fmt.Errorf("%w: portfolio draws [%d, %d] is not a range", ErrInvalidConfig, c.Portfolio.MinDraws, c.Portfolio.MaxDraws)
	case c.Portfolio.MaxDraws > 14:
		return fmt.Errorf("%w: portfolio.max_draws %d exceeds 14", ErrInvalidConfig, c.Portfolio.MaxDraws)
	case c.Optimizer.TargetSize < c.Portfolio.CoreCount:
		return fmt.Errorf("%w: optimizer.target_size %d below core_count %d", ErrInvalidConfig, c.Optimizer.TargetSize, c.Portfolio.CoreCount)
	case c.Validator.TicketCost <= 0:
		return fmt.Errorf("%w: validator.ticket_cost must be positive", ErrInvalidConfig)
	case c.Output.ProgressBuffer < 1:
		return fmt.Errorf("%w: output.progress_buffer %d < 1", ErrInvalidConfig, c.Output.ProgressBuffer)
	}
	bands := [3]types.Band{c.Validator.HomeBand, c.Validator.DrawBand, c.Validator.AwayBand}
	for i, name := range [3]string{"home_band", "draw_band", "away_band"} {
		if b := bands[i]; b.Min < 0 || b.Max > 1 || b.Min > b.Max {
			return fmt.Errorf("%w: validator.%s [%.2f, %.2f] is not a share range", ErrInvalidConfig, name, b.Min, b.Max)
		}
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "csv", "json", "txt":
		default:
			return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, f)
		}
	}
	return nil
}
