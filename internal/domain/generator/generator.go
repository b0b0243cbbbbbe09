// Package generator builds core and satellite tickets from classified
// matches.
package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// Default generator constants.
const (
	defaultCoreCount     = 4
	defaultPerturbations = 200
	defaultSeed          = 42

	borderlineDrawGap  = 0.10 // conservative: draw within this of the top
	aggressiveMinConf  = 0.15 // aggressive: keep the favorite above this
	volatileFloor      = 0.90 // satellites also target any match this volatile
	perturbFlipProb    = 0.4
	pairExtraTargetOdd = 0.5
)

type variation func(picks model.Picks, matches []model.ClassifiedMatch) model.Picks

// variations are applied to the base ticket in core order; the first is
// the base ticket itself.
var variations = []variation{ //nolint:gochecknoglobals // fixed table
	func(p model.Picks, _ []model.ClassifiedMatch) model.Picks { return p },
	conservative,
	aggressive,
	balanced,
}

// Generator owns the random source used for satellites. It is not safe for
// concurrent use.
type Generator struct {
	rules         Rules
	rng           *rand.Rand
	coreCount     int
	perturbations int
	log           logger.Logger
}

// New creates a Generator with the given draw rules.
func New(rules Rules, opts ...Option) *Generator {
	g := &Generator{
		rules:         rules,
		rng:           rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // reproducible search, not crypto
		coreCount:     defaultCoreCount,
		perturbations: defaultPerturbations,
		log:           logger.Named("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rules returns the draw bounds the generator repairs to.
func (g *Generator) Rules() Rules { return g.rules }

// BasePicks fixes Anchors to their suggestion, takes Draw at DrawLeaning
// matches while the draw budget lasts and the suggestion elsewhere.
func (g *Generator) BasePicks(matches []model.ClassifiedMatch) model.Picks {
	var picks model.Picks
	draws := 0
	for i, m := range matches {
		switch {
		case m.IsAnchor():
			picks[i] = m.Suggested
		case m.Category == model.DrawLeaning && draws < g.rules.MaxDraws:
			picks[i] = model.Draw
		case m.Category == model.DrawLeaning:
			picks[i] = nonDrawChoice(m)
		default:
			picks[i] = m.Suggested
		}
		if picks[i] == model.Draw {
			draws++
		}
	}
	return picks
}

// BaseTicket is the repaired base ticket.
func (g *Generator) BaseTicket(matches []model.ClassifiedMatch) model.Ticket {
	t := model.NewTicket("Base", model.KindCore, g.BasePicks(matches), matches)
	return g.AdjustDraws(t, matches)
}

// GenerateCore returns the core tickets Core-1..Core-n: base, conservative,
// aggressive and balanced. Deterministic.
func (g *Generator) GenerateCore(ctx context.Context, matches []model.ClassifiedMatch) ([]model.Ticket, error) {
	if len(matches) != model.MatchCount {
		return nil, fmt.Errorf("%w: got %d", ErrMatchCount, len(matches))
	}

	base := g.BasePicks(matches)
	out := make([]model.Ticket, 0, g.coreCount)
	for i := 0; i < g.coreCount; i++ {
		picks := variations[i](base, matches)
		t := model.NewTicket(fmt.Sprintf("Core-%d", i+1), model.KindCore, picks, matches)
		out = append(out, g.AdjustDraws(t, matches))
	}

	metrics.RecordTicketsGenerated(string(model.KindCore), len(out))
	g.log.Debug(ctx, "core tickets generated", logger.Int("count", len(out)))
	return out, nil
}

// conservative pushes Divisors whose draw is close to the favorite to Draw.
func conservative(picks model.Picks, matches []model.ClassifiedMatch) model.Picks {
	for i, m := range matches {
		if m.Category != model.Divisor {
			continue
		}
		top := m.Prob(m.Suggested)
		if top-m.Prob(model.Draw) <= borderlineDrawGap {
			picks[i] = model.Draw
		}
	}
	return picks
}

// aggressive keeps confident Divisors on the favorite and moves the rest
// off the draw to the stronger side.
func aggressive(picks model.Picks, matches []model.ClassifiedMatch) model.Picks {
	for i, m := range matches {
		if m.Category != model.Divisor {
			continue
		}
		if m.Confidence >= aggressiveMinConf {
			picks[i] = m.Suggested
		} else {
			picks[i] = m.BestNonDraw()
		}
	}
	return picks
}

// balanced flips the least confident third of Volatile and Neutral matches
// to their second choice.
func balanced(picks model.Picks, matches []model.ClassifiedMatch) model.Picks {
	var idx []int
	for i, m := range matches {
		if m.Category == model.Volatile || m.Category == model.Neutral {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return picks
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return matches[idx[a]].Confidence < matches[idx[b]].Confidence
	})
	n := int(math.Ceil(float64(len(idx)) / 3))
	for _, i := range idx[:n] {
		picks[i] = matches[i].Second()
	}
	return picks
}
