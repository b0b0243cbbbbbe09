// Package validator checks a portfolio against the pool's hard
// constraints and computes its summary metrics.
package validator

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// Default validator constants.
const (
	defaultMinDraws       = 4
	defaultMaxDraws       = 6
	defaultInitialCap     = 0.60
	defaultGeneralCap     = 0.70
	defaultInitialMatches = 3
	defaultTicketCost     = 15.0
	costUnit              = 1000.0
)

// DefaultBands are the historical Home, Draw and Away share bands.
func DefaultBands() [3]types.Band {
	return [3]types.Band{
		{Min: 0.35, Max: 0.41},
		{Min: 0.25, Max: 0.33},
		{Min: 0.30, Max: 0.36},
	}
}

// Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	bands          [3]types.Band
	minDraws       int
	maxDraws       int
	initialCap     float64
	generalCap     float64
	initialMatches int
	ticketCost     float64
	exempt         [model.MatchCount]bool
	log            logger.Logger
}

// New creates a Validator with the pool's default constraints.
func New(opts ...Option) *Validator {
	v := &Validator{
		bands:          DefaultBands(),
		minDraws:       defaultMinDraws,
		maxDraws:       defaultMaxDraws,
		initialCap:     defaultInitialCap,
		generalCap:     defaultGeneralCap,
		initialMatches: defaultInitialMatches,
		ticketCost:     defaultTicketCost,
		log:            logger.Named("validator"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every check and computes metrics.
func (v *Validator) Validate(ctx context.Context, p model.Portfolio) Report {
	r := Report{Metrics: v.metrics(p)}

	if len(p) == 0 {
		r.Errors = append(r.Errors, Violation{Check: CheckEmpty, Message: "portfolio is empty"})
	} else {
		r.Errors = append(r.Errors, v.distributionViolations(r.Metrics.Distribution)...)
		r.Errors = append(r.Errors, v.drawViolations(p)...)
		r.Errors = append(r.Errors, v.concentrationViolations(p)...)
	}
	r.Valid = len(r.Errors) == 0

	metrics.RecordValidation(r.Valid)
	for _, e := range r.Errors {
		metrics.RecordViolation(e.Check)
	}
	v.log.Debug(ctx, "portfolio validated",
		logger.Bool("valid", r.Valid),
		logger.Int("violations", len(r.Errors)),
		logger.Float64("probability", r.Metrics.PortfolioProbability),
	)
	return r
}

// Check is the allocation-light verdict used inside the search loop. It
// agrees with Validate(...).Valid.
func (v *Validator) Check(p model.Portfolio) bool {
	if len(p) == 0 {
		return false
	}
	var counts [3]int
	for _, t := range p {
		d := t.DrawCount()
		if d < v.minDraws || d > v.maxDraws {
			return false
		}
		for _, o := range t.Picks() {
			counts[o]++
		}
	}
	dist := types.NewDistribution(counts[model.Home], counts[model.Draw], counts[model.Away])
	if !v.bands[model.Home].Contains(dist.Home) ||
		!v.bands[model.Draw].Contains(dist.Draw) ||
		!v.bands[model.Away].Contains(dist.Away) {
		return false
	}
	if len(p) < 2 {
		return true
	}
	for i := 0; i < model.MatchCount; i++ {
		if v.exempt[i] {
			continue
		}
		if share, _ := topShare(p, i); share > v.capFor(i) {
			return false
		}
	}
	return true
}

func (v *Validator) distributionViolations(d types.Distribution) []Violation {
	var out []Violation
	shares := [3]float64{d.Home, d.Draw, d.Away}
	for _, o := range model.Outcomes {
		b := v.bands[o]
		if !b.Contains(shares[o]) {
			out = append(out, Violation{
				Check: CheckDistribution,
				Message: fmt.Sprintf("global %s share %.1f%% outside [%.0f%%, %.0f%%]",
					o, shares[o]*100, b.Min*100, b.Max*100),
			})
		}
	}
	return out
}

func (v *Validator) drawViolations(p model.Portfolio) []Violation {
	var out []Violation
	for _, t := range p {
		if d := t.DrawCount(); d < v.minDraws || d > v.maxDraws {
			out = append(out, Violation{
				Check:   CheckDraws,
				Message: fmt.Sprintf("ticket %s has %d draws, want %d-%d", t.ID(), d, v.minDraws, v.maxDraws),
			})
		}
	}
	return out
}

func (v *Validator) concentrationViolations(p model.Portfolio) []Violation {
	if len(p) < 2 {
		return nil
	}
	var out []Violation
	for i := 0; i < model.MatchCount; i++ {
		if v.exempt[i] {
			continue
		}
		share, o := topShare(p, i)
		if limit := v.capFor(i); share > limit {
			out = append(out, Violation{
				Check: CheckConcentration,
				Message: fmt.Sprintf("match %d: %.0f%% of tickets pick %s, cap %.0f%%",
					i+1, share*100, o, limit*100),
			})
		}
	}
	return out
}

func (v *Validator) capFor(match int) float64 {
	if match < v.initialMatches {
		return v.initialCap
	}
	return v.generalCap
}

// topShare returns the share of the most common pick at match i.
func topShare(p model.Portfolio, i int) (float64, model.Outcome) {
	var counts [3]int
	for _, t := range p {
		counts[t.Pick(i)]++
	}
	best := model.Home
	for _, o := range model.Outcomes[1:] {
		if counts[o] > counts[best] {
			best = o
		}
	}
	return float64(counts[best]) / float64(len(p)), best
}

func (v *Validator) metrics(p model.Portfolio) Metrics {
	m := Metrics{Tickets: len(p)}
	if len(p) == 0 {
		return m
	}

	var counts [3]int
	for _, t := range p {
		for _, o := range t.Picks() {
			counts[o]++
		}
	}
	m.Distribution = types.NewDistribution(counts[model.Home], counts[model.Draw], counts[model.Away])

	probs := p.HitProbabilities()
	m.PortfolioProbability = p.Objective()
	m.MeanTicketProbability = stat.Mean(probs, nil)
	m.MinTicketProbability = floats.Min(probs)
	m.MaxTicketProbability = floats.Max(probs)
	m.TotalCost = float64(len(p)) * v.ticketCost
	m.Efficiency = m.PortfolioProbability / (m.TotalCost / costUnit)
	m.AverageHamming = p.AverageHamming()
	return m
}
