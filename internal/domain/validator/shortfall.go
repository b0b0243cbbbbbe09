package validator

import (
	"math"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/types"
)

// Shortfall measures how far p is from satisfying every hard constraint:
// the summed amount by which shares and draw counts fall outside their
// bounds. It is zero exactly when Check(p) is true. An empty portfolio
// scores 1.
func (v *Validator) Shortfall(p model.Portfolio) float64 {
	if len(p) == 0 {
		return 1
	}

	total := 0.0
	var counts [3]int
	for _, t := range p {
		d := t.DrawCount()
		switch {
		case d < v.minDraws:
			total += float64(v.minDraws-d) / model.MatchCount
		case d > v.maxDraws:
			total += float64(d-v.maxDraws) / model.MatchCount
		}
		for _, o := range t.Picks() {
			counts[o]++
		}
	}

	dist := types.NewDistribution(counts[model.Home], counts[model.Draw], counts[model.Away])
	shares := [3]float64{dist.Home, dist.Draw, dist.Away}
	for _, o := range model.Outcomes {
		b := v.bands[o]
		total += math.Max(0, b.Min-shares[o]) + math.Max(0, shares[o]-b.Max)
	}

	if len(p) >= 2 {
		for i := 0; i < model.MatchCount; i++ {
			if v.exempt[i] {
				continue
			}
			share, _ := topShare(p, i)
			total += math.Max(0, share-v.capFor(i))
		}
	}
	return total
}
