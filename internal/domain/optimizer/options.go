package optimizer

import (
	"context"
	"math/rand"

	"github.com/okian/progol/internal/domain/dedupe"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
)

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// ProgressSink receives snapshots. Publish must not block; a false return
// means the snapshot was dropped.
type ProgressSink interface {
	Publish(ctx context.Context, p types.Progress) bool
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(types.Progress)

// Publish calls f.
func (f ProgressFunc) Publish(_ context.Context, p types.Progress) bool {
	f(p)
	return true
}

// WithProgress sets where progress snapshots go.
func WithProgress(sink ProgressSink) Option {
	return func(o *Optimizer) {
		if sink != nil {
			o.progress = sink
		}
	}
}

// WithRand injects the random source, overriding Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(o *Optimizer) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithDeduper sets the candidate key tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(o *Optimizer) {
		if d != nil {
			o.seen = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.log = l
		}
	}
}
