package generator

import (
	"math/rand"

	"github.com/okian/progol/pkg/logger"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRand injects the random source used for satellites. Runs with the
// same seed produce the same tickets.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible search, not crypto
	}
}

// WithCoreCount sets how many core tickets GenerateCore returns, 1 to 4.
func WithCoreCount(n int) Option {
	return func(g *Generator) {
		if n >= 1 && n <= len(variations) {
			g.coreCount = n
		}
	}
}

// WithPerturbations sets how many random variants are tried for an odd
// leftover satellite.
func WithPerturbations(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.perturbations = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}
