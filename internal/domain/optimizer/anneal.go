package optimizer

import (
	"context"
	"math"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// anneal refines the portfolio and returns the final current state. The
// best validated portfolio is tracked on r.
func (o *Optimizer) anneal(ctx context.Context, r *run, current model.Portfolio) (model.Portfolio, error) {
	valid := o.validator.Check(current)
	score := current.Objective()
	shortfall := 0.0
	if !valid {
		shortfall = o.validator.Shortfall(current)
	}
	o.consider(r, current, valid, score)

	temp := o.cfg.InitialTemperature
	for iter := 0; iter < o.cfg.Iterations; iter++ {
		if iter%o.cfg.ProgressEvery == 0 {
			pct := constructionEnd + (annealEnd-constructionEnd)*float64(iter)/float64(o.cfg.Iterations)
			if err := o.yield(ctx, r, types.PhaseAnnealing, iter, pct); err != nil {
				return nil, err
			}
		}

		idx := o.tournament(current)
		neighbor := current.Replace(idx, o.mutate(r, current[idx]))
		nScore := neighbor.Objective()

		switch {
		case o.validator.Check(neighbor):
			delta := nScore - score
			switch {
			case !valid:
				// First valid state reached from a descent.
				r.stats.Improving++
				metrics.RecordNeighborAccepted(true)
			case delta > 0:
				r.stats.Improving++
				metrics.RecordNeighborAccepted(true)
			case o.rng.Float64() < math.Exp(delta/temp):
				r.stats.Metropolis++
				metrics.RecordNeighborAccepted(false)
			default:
				r.stats.Rejected++
				o.cool(r, &temp)
				continue
			}
			current, score, valid, shortfall = neighbor, nScore, true, 0
			o.consider(r, current, true, score)

		case !valid && o.cfg.FeasibilityDescent:
			sf := o.validator.Shortfall(neighbor)
			if sf > shortfall {
				r.stats.Invalid++
				metrics.RecordNeighborRejected()
				o.cool(r, &temp)
				continue
			}
			current, score, shortfall = neighbor, nScore, sf

		default:
			r.stats.Invalid++
			metrics.RecordNeighborRejected()
		}

		metrics.UpdateAnnealScores(r.bestProb, score)
		o.cool(r, &temp)
	}

	r.stats.FinalTemperature = temp
	o.log.Debug(ctx, "annealing finished",
		logger.Int("iterations", r.stats.Iterations),
		logger.Float64("temperature", temp),
		logger.Bool("valid", r.bestOK),
	)
	return current, nil
}

func (o *Optimizer) cool(r *run, temp *float64) {
	*temp *= o.cfg.CoolingRate
	r.stats.Iterations++
	metrics.RecordAnnealIteration(*temp)
}

// tournament samples a few tickets and returns the index of the one least
// likely to pay, so weak tickets are mutated more often.
func (o *Optimizer) tournament(p model.Portfolio) int {
	best := o.rng.Intn(len(p))
	for k := 1; k < tournamentSize; k++ {
		c := o.rng.Intn(len(p))
		if p[c].HitProbability() < p[best].HitProbability() {
			best = c
		}
	}
	return best
}

// mutate flips 1..MaxFlips distinct free positions, then repairs draws.
func (o *Optimizer) mutate(r *run, t model.Ticket) model.Ticket {
	if len(r.free) == 0 {
		return t
	}
	picks := t.Picks()
	o.flip(r, &picks, 1+o.rng.Intn(min(o.cfg.MaxFlips, len(r.free))))
	return o.repairer.AdjustDraws(t.WithPicks(picks, r.matches), r.matches)
}

// flip moves n distinct free positions to an alternative outcome drawn in
// proportion to its probability.
func (o *Optimizer) flip(r *run, picks *model.Picks, n int) {
	for _, k := range o.rng.Perm(len(r.free))[:n] {
		i := r.free[k]
		m := r.matches[i]
		alt := m.Alternatives(picks[i])
		pa, pb := m.Prob(alt[0]), m.Prob(alt[1])
		if o.rng.Float64()*(pa+pb) < pa {
			picks[i] = alt[0]
		} else {
			picks[i] = alt[1]
		}
	}
}
