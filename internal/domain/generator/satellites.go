package generator

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// GenerateSatellites returns count satellite tickets built in
// anti-correlated pairs around the base ticket. An odd count adds one
// ticket picked for maximum distance from everything placed so far.
func (g *Generator) GenerateSatellites(ctx context.Context, matches []model.ClassifiedMatch, core []model.Ticket, count int) ([]model.Ticket, error) {
	if len(matches) != model.MatchCount {
		return nil, fmt.Errorf("%w: got %d", ErrMatchCount, len(matches))
	}
	if count <= 0 {
		return nil, nil
	}

	base := g.BaseTicket(matches).Picks()
	targets := satelliteTargets(matches)

	out := make([]model.Ticket, 0, count)
	for p := 0; p < count/2; p++ {
		a, b := g.pair(base, matches, targets, p)
		out = append(out, a, b)
	}
	if count%2 == 1 {
		placed := make([]model.Ticket, 0, len(core)+len(out))
		placed = append(append(placed, core...), out...)
		out = append(out, g.leftover(base, matches, placed, count/2+1))
	}

	metrics.RecordTicketsGenerated(string(model.KindSatellite), len(out))
	g.log.Debug(ctx, "satellite tickets generated",
		logger.Int("count", len(out)),
		logger.Int("targets", len(targets)),
	)
	return out, nil
}

// satelliteTargets lists the uncertain matches, most volatile first. With
// none of those, every non-Anchor match is a target.
func satelliteTargets(matches []model.ClassifiedMatch) []int {
	var idx, fallback []int
	for i, m := range matches {
		if m.IsAnchor() {
			continue
		}
		fallback = append(fallback, i)
		switch {
		case m.Category == model.Divisor, m.Category == model.DrawLeaning, m.Category == model.Volatile:
			idx = append(idx, i)
		case m.Volatility >= volatileFloor:
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		idx = fallback
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return matches[idx[a]].Volatility > matches[idx[b]].Volatility
	})
	return idx
}

// pair builds Sat-nA and Sat-nB. Both copy the base ticket except on the
// chosen targets, where A takes the favorite and B the second choice.
func (g *Generator) pair(base model.Picks, matches []model.ClassifiedMatch, targets []int, p int) (model.Ticket, model.Ticket) {
	a, b := base, base
	if len(targets) > 0 {
		primary := targets[p%len(targets)]
		for _, i := range targets {
			if i != primary && g.rng.Float64() >= pairExtraTargetOdd {
				continue
			}
			a[i] = matches[i].Suggested
			b[i] = matches[i].Second()
		}
	}

	n := p + 1
	ta := model.NewTicket(fmt.Sprintf("Sat-%dA", n), model.KindSatellite, a, matches)
	tb := model.NewTicket(fmt.Sprintf("Sat-%dB", n), model.KindSatellite, b, matches)
	return g.AdjustDraws(ta, matches), g.AdjustDraws(tb, matches)
}

// leftover perturbs the base ticket repeatedly and keeps the variant with
// the largest mean Hamming distance to placed.
func (g *Generator) leftover(base model.Picks, matches []model.ClassifiedMatch, placed []model.Ticket, n int) model.Ticket {
	id := fmt.Sprintf("Sat-%d", n)
	var best model.Ticket
	bestDist := -1.0
	for k := 0; k < g.perturbations; k++ {
		picks := base
		for i, m := range matches {
			if !m.IsAnchor() && g.rng.Float64() < perturbFlipProb {
				picks[i] = m.Second()
			}
		}
		t := g.AdjustDraws(model.NewTicket(id, model.KindSatellite, picks, matches), matches)
		if d := meanHamming(t.Picks(), placed); d > bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func meanHamming(p model.Picks, placed []model.Ticket) float64 {
	if len(placed) == 0 {
		return 0
	}
	total := 0
	for _, t := range placed {
		total += p.Hamming(t.Picks())
	}
	return float64(total) / float64(len(placed))
}
