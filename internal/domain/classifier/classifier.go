// Package classifier calibrates raw match probabilities with contextual
// signals and assigns each match one of five categories.
package classifier

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// Default calibration and classification constants.
const (
	defaultFormWeight     = 0.15
	defaultInjuryWeight   = 0.10
	defaultDecisiveWeight = 0.20
	minFactor             = 0.1

	defaultAnchorMin     = 0.60
	defaultAnchorGap     = 0.20
	defaultDrawMin       = 0.30
	defaultDivisorMin    = 0.40
	defaultDivisorMax    = 0.60
	defaultVolatileGap   = 0.10
	defaultDrawCloseness = 0.08
	defaultDrawBoost     = 0.06
	defaultDrawCap       = 0.95
)

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	weights    Weights
	thresholds Thresholds
	log        logger.Logger
}

// New creates a Classifier with the pool's default weights and thresholds.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		weights: Weights{
			Form:     defaultFormWeight,
			Injury:   defaultInjuryWeight,
			Decisive: defaultDecisiveWeight,
		},
		thresholds: Thresholds{
			AnchorMin:     defaultAnchorMin,
			AnchorGap:     defaultAnchorGap,
			DrawMin:       defaultDrawMin,
			DivisorMin:    defaultDivisorMin,
			DivisorMax:    defaultDivisorMax,
			VolatileGap:   defaultVolatileGap,
			DrawCloseness: defaultDrawCloseness,
			DrawBoost:     defaultDrawBoost,
			DrawCap:       defaultDrawCap,
		},
		log: logger.Named("classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify calibrates and labels exactly model.MatchCount matches.
func (c *Classifier) Classify(ctx context.Context, matches []model.Match) ([]model.ClassifiedMatch, error) {
	if len(matches) != model.MatchCount {
		return nil, fmt.Errorf("%w: need %d matches, got %d", ErrInput, model.MatchCount, len(matches))
	}

	out := make([]model.ClassifiedMatch, len(matches))
	counts := make(map[model.Category]int, len(model.Categories))
	for i, m := range matches {
		probs, err := c.Calibrate(m)
		if err != nil {
			return nil, fmt.Errorf("%w: match %d (%s): %w", ErrInput, i+1, m, err)
		}
		ranked := probs.Ranked()
		cm := model.ClassifiedMatch{
			Index:      i,
			Match:      m,
			Probs:      probs,
			Category:   c.Categorize(probs),
			Suggested:  ranked[0],
			Confidence: probs.Gap(),
			Volatility: Volatility(probs),
		}
		counts[cm.Category]++
		out[i] = cm

		c.log.Debug(ctx, "match classified",
			logger.Int("index", i+1),
			logger.String("match", m.String()),
			logger.String("category", cm.Category.String()),
			logger.String("suggested", cm.Suggested.String()),
			logger.Float64("confidence", cm.Confidence),
		)
	}

	for _, cat := range model.Categories {
		metrics.UpdateMatchesByCategory(cat.String(), counts[cat])
	}
	return out, nil
}

// Calibrate applies the contextual adjustment and the draw-propensity rule,
// then renormalizes.
func (c *Classifier) Calibrate(m model.Match) (model.Probs, error) {
	raw := m.Probs()
	sig := m.Signals()

	decisive := 0.0
	if sig.Decisive {
		decisive = 1
	}
	factor := 1 + c.weights.Form*sig.FormDiff + c.weights.Injury*sig.InjuryImpact + c.weights.Decisive*decisive
	factor = math.Max(factor, minFactor)

	h := raw[model.Home] * factor
	d := raw[model.Draw]
	a := raw[model.Away] / factor

	t := c.thresholds
	if math.Abs(h-a) < t.DrawCloseness && d > math.Max(h, a) {
		d = math.Min(d+t.DrawBoost, t.DrawCap)
	}

	return model.Probs{h, d, a}.Normalize()
}

// Categorize labels calibrated probabilities. Checks run in precedence
// order so exactly one category applies.
func (c *Classifier) Categorize(p model.Probs) model.Category {
	t := c.thresholds
	ranked := p.Ranked()
	top := p[ranked[0]]
	gap := p.Gap()
	draw := p[model.Draw]

	switch {
	case top > t.AnchorMin && gap >= t.AnchorGap:
		return model.Anchor
	case draw > t.DrawMin && draw >= math.Max(p[model.Home], p[model.Away]):
		return model.DrawLeaning
	case top >= t.DivisorMin && top < t.DivisorMax:
		return model.Divisor
	case gap < t.VolatileGap:
		return model.Volatile
	default:
		return model.Neutral
	}
}

// Volatility is the Shannon entropy of p divided by ln 3, so a uniform
// triple scores 1 and a certain one scores 0.
func Volatility(p model.Probs) float64 {
	return stat.Entropy(p[:]) / math.Log(3)
}
