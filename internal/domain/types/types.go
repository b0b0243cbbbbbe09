// Package types contains common types used across the application
package types

// Phase names a stage of an optimization run.
type Phase string

// Optimization phases, in run order.
const (
	PhasePool         Phase = "pool"
	PhaseConstruction Phase = "construction"
	PhaseAnnealing    Phase = "annealing"
	PhaseDone         Phase = "done"
)

// Progress is a snapshot pushed by the optimizer at its yield points.
// Percent and BestScore never decrease within one run.
type Progress struct {
	Phase     Phase   `json:"phase"`
	Iteration int     `json:"iteration"`
	BestScore float64 `json:"best_score"`
	Percent   float64 `json:"percent"`
}

// Distribution is the pooled Home/Draw/Away share across a portfolio.
type Distribution struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// NewDistribution converts raw pick counts into shares. All zero counts
// yield the zero Distribution.
func NewDistribution(home, draw, away int) Distribution {
	total := home + draw + away
	if total == 0 {
		return Distribution{}
	}
	t := float64(total)
	return Distribution{
		Home: float64(home) / t,
		Draw: float64(draw) / t,
		Away: float64(away) / t,
	}
}

// Band is an inclusive [Min, Max] range.
type Band struct {
	Min float64 `json:"min" koanf:"min"`
	Max float64 `json:"max" koanf:"max"`
}

// Contains reports whether v lies inside the band.
func (b Band) Contains(v float64) bool { return v >= b.Min && v <= b.Max }

// HistoricalDistribution is the long-run share of results in the pool.
var HistoricalDistribution = Distribution{Home: 0.38, Draw: 0.29, Away: 0.33} //nolint:gochecknoglobals // reference constant
