// Package service runs the optimization pipeline: classify the slate,
// generate core and satellite tickets, optimize the portfolio and
// validate the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/progol/internal/adapters/export"
	"github.com/okian/progol/internal/config"
	"github.com/okian/progol/internal/domain/classifier"
	"github.com/okian/progol/internal/domain/dedupe"
	"github.com/okian/progol/internal/domain/generator"
	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/optimizer"
	"github.com/okian/progol/internal/domain/validator"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// Pipeline stage names, also used as metric labels.
const (
	StageClassify   = "classify"
	StageCore       = "core"
	StageSatellites = "satellites"
	StageOptimize   = "optimize"
	StageValidate   = "validate"
)

// Run outcomes, also used as metric labels.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Service wires the domain components from configuration. A Service may
// run many slates; each Run builds fresh components.
type Service struct {
	cfg      *config.Config
	logger   logger.Logger
	progress optimizer.ProgressSink
	seed     *int64
	now      func() time.Time
	newID    func() string
}

// Result is everything one run produced.
type Result struct {
	RunID      string
	StartedAt  time.Time
	Matches    []model.ClassifiedMatch
	Core       []model.Ticket
	Satellites []model.Ticket
	Portfolio  model.Portfolio
	Report     validator.Report
	Stats      optimizer.Stats
	Elapsed    time.Duration
}

// Document converts the result for the exporters.
func (r Result) Document() export.Document {
	return export.Document{
		RunID:       r.RunID,
		GeneratedAt: r.StartedAt,
		Matches:     r.Matches,
		Portfolio:   r.Portfolio,
		Report:      r.Report,
	}
}

// New constructs a Service. The configuration is validated up front.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:    config.New(),
		logger: logger.Named("service"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes the pipeline over a 14-match slate. It returns
// *optimizer.InfeasibleError when no valid portfolio was found.
func (s *Service) Run(ctx context.Context, matches []model.Match) (res Result, err error) {
	res = Result{RunID: s.newID(), StartedAt: s.now()}
	log := s.logger
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		metrics.RecordRun(outcome(err), float64(res.Elapsed.Milliseconds()))
	}()

	log.Info(ctx, "run started", logger.String("run_id", res.RunID), logger.Int("matches", len(matches)))

	err = s.stage(ctx, StageClassify, func() error {
		var cerr error
		res.Matches, cerr = s.classifier().Classify(ctx, matches)
		return cerr
	})
	if err != nil {
		return res, err
	}

	gen := s.generator()
	err = s.stage(ctx, StageCore, func() error {
		var gerr error
		res.Core, gerr = gen.GenerateCore(ctx, res.Matches)
		return gerr
	})
	if err != nil {
		return res, err
	}

	err = s.stage(ctx, StageSatellites, func() error {
		var gerr error
		res.Satellites, gerr = gen.GenerateSatellites(ctx, res.Matches, res.Core, s.cfg.Optimizer.TargetSize-len(res.Core))
		return gerr
	})
	if err != nil {
		return res, err
	}

	v := s.validator(res.Matches)

	err = s.stage(ctx, StageOptimize, func() error {
		opt, oerr := s.optimizer(v, gen)
		if oerr != nil {
			return oerr
		}
		// Core tickets start the portfolio; satellites compete in the pool.
		out, oerr := opt.Optimize(ctx, res.Core, res.Matches, res.Satellites...)
		res.Stats = out.Stats
		if oerr != nil {
			var inf *optimizer.InfeasibleError
			if errors.As(oerr, &inf) {
				res.Report = inf.Report
			}
			return oerr
		}
		res.Portfolio = out.Portfolio
		return nil
	})
	if err != nil {
		return res, err
	}

	err = s.stage(ctx, StageValidate, func() error {
		res.Report = v.Validate(ctx, res.Portfolio)
		return nil
	})
	if err != nil {
		return res, err
	}

	metrics.UpdateFinalPortfolio(res.Report.Metrics.PortfolioProbability, res.Report.Valid)
	log.Info(ctx, "run finished",
		logger.String("run_id", res.RunID),
		logger.Int("tickets", len(res.Portfolio)),
		logger.Float64("probability", res.Report.Metrics.PortfolioProbability),
		logger.Bool("valid", res.Report.Valid),
	)
	return res, nil
}

// stage times fn and wraps its error with the stage name.
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStageDuration(name, float64(elapsed.Milliseconds()))
	if err != nil {
		s.logger.Error(ctx, "stage failed", logger.String("stage", name), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logger.Debug(ctx, "stage done", logger.String("stage", name), logger.Duration("elapsed", elapsed))
	return nil
}

func (s *Service) seedValue() int64 {
	if s.seed != nil {
		return *s.seed
	}
	return s.cfg.Optimizer.Seed
}

func (s *Service) classifier() *classifier.Classifier {
	c := s.cfg.Classifier
	return classifier.New(
		classifier.WithWeights(classifier.Weights{
			Form:     c.FormWeight,
			Injury:   c.InjuryWeight,
			Decisive: c.DecisiveWeight,
		}),
		classifier.WithThresholds(classifier.Thresholds{
			AnchorMin:     c.AnchorMin,
			AnchorGap:     c.AnchorGap,
			DrawMin:       c.DrawMin,
			DivisorMin:    c.DivisorMin,
			DivisorMax:    c.DivisorMax,
			VolatileGap:   c.VolatileGap,
			DrawCloseness: c.DrawCloseness,
			DrawBoost:     c.DrawBoost,
			DrawCap:       c.DrawCap,
		}),
		classifier.WithLogger(s.logger.Named("classifier")),
	)
}

func (s *Service) generator() *generator.Generator {
	p := s.cfg.Portfolio
	return generator.New(
		generator.Rules{MinDraws: p.MinDraws, MaxDraws: p.MaxDraws},
		generator.WithSeed(s.seedValue()),
		generator.WithCoreCount(p.CoreCount),
		generator.WithPerturbations(p.Perturbations),
		generator.WithLogger(s.logger.Named("generator")),
	)
}

func (s *Service) validator(matches []model.ClassifiedMatch) *validator.Validator {
	c := s.cfg.Validator
	opts := []validator.Option{
		validator.WithBands(c.HomeBand, c.DrawBand, c.AwayBand),
		validator.WithDrawRange(s.cfg.Portfolio.MinDraws, s.cfg.Portfolio.MaxDraws),
		validator.WithConcentration(c.InitialCap, c.GeneralCap, c.InitialMatches),
		validator.WithTicketCost(c.TicketCost),
		validator.WithLogger(s.logger.Named("validator")),
	}
	if c.ExemptAnchors {
		var anchors []int
		for _, m := range matches {
			if m.IsAnchor() {
				anchors = append(anchors, m.Index)
			}
		}
		opts = append(opts, validator.WithConcentrationExempt(anchors...))
	}
	return validator.New(opts...)
}

func (s *Service) optimizer(v *validator.Validator, gen *generator.Generator) (*optimizer.Optimizer, error) {
	c := s.cfg.Optimizer
	cfg := optimizer.Config{
		Iterations:         c.Iterations,
		InitialTemperature: c.InitialTemperature,
		CoolingRate:        c.CoolingRate,
		TargetSize:         c.TargetSize,
		CandidatePool:      c.CandidatePool,
		RCLAlpha:           c.RCLAlpha,
		SelectAlpha:        c.SelectAlpha,
		ProgressEvery:      c.ProgressEvery,
		MaxFlips:           c.MaxFlips,
		Seed:               s.seedValue(),
		FeasibilityDescent: c.FeasibilityDescent,
	}
	opts := []optimizer.Option{
		optimizer.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(c.DedupeSize))),
		optimizer.WithLogger(s.logger.Named("optimizer")),
	}
	if s.progress != nil {
		opts = append(opts, optimizer.WithProgress(s.progress))
	}
	return optimizer.New(cfg, v, gen, opts...)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, optimizer.ErrInfeasible):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
