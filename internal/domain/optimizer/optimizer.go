// Package optimizer searches for the portfolio with the highest chance of
// at least one ticket reaching the prize threshold. It runs GRASP
// construction followed by simulated annealing, and only ever returns a
// portfolio that passed validation.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/progol/internal/domain/dedupe"
	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/internal/domain/validator"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// Progress bands per phase, in percent.
const (
	poolEnd         = 25.0
	constructionEnd = 50.0
	annealEnd       = 100.0

	tournamentSize  = 3
	poolAttemptsPer = 20 // attempts per requested candidate before giving up
	poolVariation   = 5  // most free picks varied per pool candidate
	minRCL          = 2  // outcomes every free match keeps in its RCL
)

// Validator is what the search needs from the portfolio validator.
type Validator interface {
	Check(p model.Portfolio) bool
	Shortfall(p model.Portfolio) float64
	Validate(ctx context.Context, p model.Portfolio) validator.Report
}

// Repairer restores a ticket's draw count after construction or mutation.
type Repairer interface {
	AdjustDraws(t model.Ticket, matches []model.ClassifiedMatch) model.Ticket
}

// Stats summarizes one run.
type Stats struct {
	PoolSize         int     `json:"pool_size"`
	Duplicates       int     `json:"duplicates"`
	Iterations       int     `json:"iterations"`
	Improving        int     `json:"improving"`
	Metropolis       int     `json:"metropolis"`
	Rejected         int     `json:"rejected"`
	Invalid          int     `json:"invalid"`
	FinalTemperature float64 `json:"final_temperature"`
	Elapsed          time.Duration
}

// Result is the best validated portfolio and its report.
type Result struct {
	Portfolio model.Portfolio
	Score     float64
	Report    validator.Report
	Stats     Stats
}

// Optimizer is not safe for concurrent use; it owns its random source.
type Optimizer struct {
	cfg       Config
	validator Validator
	repairer  Repairer
	rng       *rand.Rand
	seen      dedupe.Deduper
	progress  ProgressSink
	log       logger.Logger
}

// New creates an Optimizer.
func New(cfg Config, v Validator, r Repairer, opts ...Option) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{
		cfg:       cfg,
		validator: v,
		repairer:  r,
		rng:       rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // reproducible search, not crypto
		seen:      dedupe.NewInMemoryDeduper(),
		progress:  ProgressFunc(func(types.Progress) {}),
		log:       logger.Named("optimizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// run holds the mutable state of one Optimize call.
type run struct {
	matches  []model.ClassifiedMatch
	free     []int // non-Anchor match indices
	stats    Stats
	best     model.Portfolio
	bestOK   bool
	bestProb float64
	percent  float64
}

// Optimize builds a candidate pool from seeds plus randomized tickets,
// grows initial to the target size by GRASP and refines it by annealing.
func (o *Optimizer) Optimize(ctx context.Context, initial []model.Ticket, matches []model.ClassifiedMatch, seeds ...model.Ticket) (Result, error) {
	if len(matches) != model.MatchCount {
		return Result{}, fmt.Errorf("%w: got %d", ErrMatchCount, len(matches))
	}
	start := time.Now()
	r := &run{matches: matches}
	for i, m := range matches {
		if !m.IsAnchor() {
			r.free = append(r.free, i)
		}
	}

	if len(initial) > o.cfg.TargetSize {
		initial = initial[:o.cfg.TargetSize]
	}
	portfolio := model.Portfolio(initial).Clone()

	pool, err := o.buildPool(ctx, r, portfolio, seeds)
	if err != nil {
		return Result{Stats: r.stats}, err
	}
	portfolio, err = o.construct(ctx, r, portfolio, pool)
	if err != nil {
		return Result{Stats: r.stats}, err
	}
	last, err := o.anneal(ctx, r, portfolio)
	if err != nil {
		return Result{Stats: r.stats}, err
	}

	r.stats.Elapsed = time.Since(start)
	o.emit(ctx, r, types.PhaseDone, r.stats.Iterations, annealEnd)

	if !r.bestOK {
		report := o.validator.Validate(ctx, last)
		o.log.Warn(ctx, "no valid portfolio found",
			logger.Int("violations", len(report.Errors)),
			logger.Int("iterations", r.stats.Iterations),
		)
		return Result{Stats: r.stats}, &InfeasibleError{Report: report}
	}

	report := o.validator.Validate(ctx, r.best)
	o.log.Info(ctx, "optimization finished",
		logger.Float64("probability", r.bestProb),
		logger.Int("tickets", len(r.best)),
		logger.Int("improving", r.stats.Improving),
		logger.Int("invalid", r.stats.Invalid),
		logger.Duration("elapsed", r.stats.Elapsed),
	)
	return Result{
		Portfolio: r.best,
		Score:     r.bestProb,
		Report:    report,
		Stats:     r.stats,
	}, nil
}

// emit publishes a snapshot. Percent and best score never move backwards.
func (o *Optimizer) emit(ctx context.Context, r *run, phase types.Phase, iteration int, percent float64) {
	r.percent = math.Max(r.percent, math.Min(percent, annealEnd))
	snap := types.Progress{
		Phase:     phase,
		Iteration: iteration,
		BestScore: r.bestProb,
		Percent:   r.percent,
	}
	if o.progress.Publish(ctx, snap) {
		metrics.RecordProgressPublished()
		return
	}
	metrics.RecordProgressDropped()
}

// yield is the cooperative suspension point: it reports progress and
// checks for cancellation.
func (o *Optimizer) yield(ctx context.Context, r *run, phase types.Phase, iteration int, percent float64) error {
	o.emit(ctx, r, phase, iteration, percent)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("optimize %s: %w", phase, err)
	}
	return nil
}

// consider records p as the best-ever portfolio when it is valid and
// beats the incumbent.
func (o *Optimizer) consider(r *run, p model.Portfolio, valid bool, score float64) {
	if !valid || (r.bestOK && score <= r.bestProb) {
		return
	}
	r.best = p.Clone()
	r.bestProb = score
	r.bestOK = true
}
