package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/probability"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// buildPool collects unique candidates: seeds first, then randomized
// greedy tickets. Tickets already in the portfolio are never candidates.
func (o *Optimizer) buildPool(ctx context.Context, r *run, portfolio model.Portfolio, seeds []model.Ticket) ([]model.Ticket, error) {
	o.seen.Reset()
	for _, t := range portfolio {
		o.seen.SeenTicket(t)
	}

	want := o.cfg.CandidatePool + len(seeds)
	pool := make([]model.Ticket, 0, want)
	admit := func(t model.Ticket) {
		if o.seen.SeenTicket(t) {
			r.stats.Duplicates++
			metrics.RecordCandidateDuplicate()
			return
		}
		pool = append(pool, t)
	}

	for _, s := range seeds {
		admit(o.repairer.AdjustDraws(s, r.matches))
	}

	attempts := o.cfg.CandidatePool * poolAttemptsPer
	for n := 0; n < attempts && len(pool) < want; n++ {
		if n%o.cfg.ProgressEvery == 0 {
			pct := poolEnd * float64(len(pool)) / float64(max(want, 1))
			if err := o.yield(ctx, r, types.PhasePool, n, pct); err != nil {
				return nil, err
			}
		}
		admit(o.randomizedTicket(r, fmt.Sprintf("Cand-%d", n+1)))
	}

	r.stats.PoolSize = len(pool)
	metrics.UpdateCandidatePoolSize(len(pool))
	o.log.Debug(ctx, "candidate pool built",
		logger.Int("size", len(pool)),
		logger.Int("seeds", len(seeds)),
		logger.Int("duplicates", r.stats.Duplicates),
	)
	return pool, o.yield(ctx, r, types.PhasePool, 0, poolEnd)
}

// randomizedTicket draws each free match uniformly from its restricted
// candidate list, then varies up to poolVariation free picks toward
// alternatives. Anchors take their suggestion.
func (o *Optimizer) randomizedTicket(r *run, id string) model.Ticket {
	var picks model.Picks
	for i, m := range r.matches {
		if m.IsAnchor() {
			picks[i] = m.Suggested
			continue
		}
		rcl := restrictedList(m.Probs, o.cfg.RCLAlpha)
		picks[i] = rcl[o.rng.Intn(len(rcl))]
	}
	if len(r.free) > 0 {
		o.flip(r, &picks, 1+o.rng.Intn(min(poolVariation, len(r.free))))
	}
	t := model.NewTicket(id, model.KindCandidate, picks, r.matches)
	return o.repairer.AdjustDraws(t, r.matches)
}

// restrictedList returns the outcomes within alpha·(max−min) of the best,
// widened to the top minRCL outcomes when the cut admits fewer.
func restrictedList(p model.Probs, alpha float64) []model.Outcome {
	hi := math.Max(p[model.Home], math.Max(p[model.Draw], p[model.Away]))
	lo := math.Min(p[model.Home], math.Min(p[model.Draw], p[model.Away]))
	cut := hi - alpha*(hi-lo)
	if floor := p[p.Ranked()[minRCL-1]]; floor < cut {
		cut = floor
	}
	out := make([]model.Outcome, 0, len(model.Outcomes))
	for _, o := range model.Outcomes {
		if p[o] >= cut {
			out = append(out, o)
		}
	}
	return out
}

type scored struct {
	idx  int
	gain float64
}

// construct grows the portfolio to the target size. Each round ranks the
// remaining candidates by marginal gain and picks uniformly among the top
// SelectAlpha fraction.
func (o *Optimizer) construct(ctx context.Context, r *run, portfolio model.Portfolio, pool []model.Ticket) (model.Portfolio, error) {
	target := o.cfg.TargetSize
	probs := portfolio.HitProbabilities()
	ranked := make([]scored, 0, len(pool))

	for len(portfolio) < target {
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: have %d of %d tickets", ErrPoolExhausted, len(portfolio), target)
		}

		ranked = ranked[:0]
		for i, c := range pool {
			ranked = append(ranked, scored{idx: i, gain: probability.MarginalGain(probs, c.HitProbability())})
		}
		sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].gain > ranked[b].gain })

		top := max(1, int(o.cfg.SelectAlpha*float64(len(ranked))))
		pick := ranked[o.rng.Intn(top)].idx

		chosen := pool[pick]
		pool[pick] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		portfolio = append(portfolio, chosen)
		probs = append(probs, chosen.HitProbability())
		metrics.RecordConstructionSelection()

		pct := poolEnd + (constructionEnd-poolEnd)*float64(len(portfolio))/float64(target)
		if err := o.yield(ctx, r, types.PhaseConstruction, len(portfolio), pct); err != nil {
			return nil, err
		}
	}

	o.log.Debug(ctx, "portfolio constructed",
		logger.Int("tickets", len(portfolio)),
		logger.Float64("probability", portfolio.Objective()),
	)
	return portfolio, nil
}
