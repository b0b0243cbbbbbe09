package optimizer

import "fmt"

// Config is the immutable search configuration.
type Config struct {
	Iterations         int
	InitialTemperature float64
	CoolingRate        float64
	TargetSize         int
	CandidatePool      int
	RCLAlpha           float64 // restricted candidate list width per match
	SelectAlpha        float64 // top fraction sampled during construction
	ProgressEvery      int
	MaxFlips           int
	Seed               int64

	// FeasibilityDescent lets annealing walk invalid portfolios toward
	// validity, by constraint shortfall, until the first valid one is seen.
	FeasibilityDescent bool
}

// DefaultConfig returns the standard search settings.
func DefaultConfig() Config {
	return Config{
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
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations %d < 0", ErrInvalidConfig, c.Iterations)
	case c.InitialTemperature <= 0:
		return fmt.Errorf("%w: initial temperature must be positive", ErrInvalidConfig)
	case c.CoolingRate <= 0 || c.CoolingRate > 1:
		return fmt.Errorf("%w: cooling rate %.4f outside (0, 1]", ErrInvalidConfig, c.CoolingRate)
	case c.TargetSize < 1:
		return fmt.Errorf("%w: target size %d < 1", ErrInvalidConfig, c.TargetSize)
	case c.CandidatePool < 0:
		return fmt.Errorf("%w: candidate pool %d < 0", ErrInvalidConfig, c.CandidatePool)
	case c.RCLAlpha < 0 || c.RCLAlpha > 1:
		return fmt.Errorf("%w: rcl alpha %.2f outside [0, 1]", ErrInvalidConfig, c.RCLAlpha)
	case c.SelectAlpha < 0 || c.SelectAlpha > 1:
		return fmt.Errorf("%w: select alpha %.2f outside [0, 1]", ErrInvalidConfig, c.SelectAlpha)
	case c.ProgressEvery < 1:
		return fmt.Errorf("%w: progress cadence %d < 1", ErrInvalidConfig, c.ProgressEvery)
	case c.MaxFlips < 1:
		return fmt.Errorf("%w: max flips %d < 1", ErrInvalidConfig, c.MaxFlips)
	}
	return nil
}
