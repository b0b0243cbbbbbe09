package generator

import (
	"sort"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/pkg/metrics"
)

// Rules bounds the number of Draw picks per ticket, inclusive.
type Rules struct {
	MinDraws int
	MaxDraws int
}

// DefaultRules are the pool's historical draw bounds.
func DefaultRules() Rules {
	return Rules{MinDraws: 4, MaxDraws: 6}
}

// AdjustDraws repairs the draw count of t. A compliant ticket is returned
// unchanged, so the repair is idempotent. Anchor picks are never touched.
func (g *Generator) AdjustDraws(t model.Ticket, matches []model.ClassifiedMatch) model.Ticket {
	picks, changed := g.adjustPicks(t.Picks(), matches)
	if !changed {
		return t
	}
	metrics.RecordDrawAdjustment()
	return t.WithPicks(picks, matches)
}

func (g *Generator) adjustPicks(picks model.Picks, matches []model.ClassifiedMatch) (model.Picks, bool) {
	draws := picks.Count(model.Draw)
	switch {
	case draws < g.rules.MinDraws:
		return g.addDraws(picks, matches, g.rules.MinDraws-draws), true
	case draws > g.rules.MaxDraws:
		return g.removeDraws(picks, matches, draws-g.rules.MaxDraws), true
	default:
		return picks, false
	}
}

// addDraws turns the non-Anchor, non-Draw picks with the highest draw
// probability into draws.
func (g *Generator) addDraws(picks model.Picks, matches []model.ClassifiedMatch, need int) model.Picks {
	var idx []int
	for i, o := range picks {
		if o != model.Draw && !matches[i].IsAnchor() {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return matches[idx[a]].Prob(model.Draw) > matches[idx[b]].Prob(model.Draw)
	})
	for _, i := range idx[:min(need, len(idx))] {
		picks[i] = model.Draw
	}
	return picks
}

// removeDraws reverts the least likely draws. Draws at DrawLeaning
// matches go last.
func (g *Generator) removeDraws(picks model.Picks, matches []model.ClassifiedMatch, excess int) model.Picks {
	var plain, leaning []int
	for i, o := range picks {
		if o != model.Draw || matches[i].IsAnchor() {
			continue
		}
		if matches[i].Category == model.DrawLeaning {
			leaning = append(leaning, i)
		} else {
			plain = append(plain, i)
		}
	}
	byDraw := func(s []int) {
		sort.SliceStable(s, func(a, b int) bool {
			return matches[s[a]].Prob(model.Draw) < matches[s[b]].Prob(model.Draw)
		})
	}
	byDraw(plain)
	byDraw(leaning)

	for _, i := range append(plain, leaning...)[:min(excess, len(plain)+len(leaning))] {
		picks[i] = nonDrawChoice(matches[i])
	}
	return picks
}

// nonDrawChoice is the suggested outcome, or the stronger side when the
// suggestion itself is a draw.
func nonDrawChoice(m model.ClassifiedMatch) model.Outcome {
	if m.Suggested != model.Draw {
		return m.Suggested
	}
	return m.BestNonDraw()
}
