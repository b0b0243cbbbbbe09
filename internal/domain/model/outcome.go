// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Outcome is a single match result.
type Outcome uint8

// Match outcomes. The numeric value indexes Probs.
const (
	Home Outcome = iota
	Draw
	Away
)

// Outcomes lists every outcome in index order.
var Outcomes = [3]Outcome{Home, Draw, Away} //nolint:gochecknoglobals // fixed enumeration

// String returns the ticket symbol: H, D or A.
func (o Outcome) String() string {
	switch o {
	case Home:
		return "H"
	case Draw:
		return "D"
	case Away:
		return "A"
	default:
		return "?"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if o > Away {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(b []byte) error {
	parsed, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome accepts H/D/A as well as the pool's 1/X/2 and L/E/V spellings.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H", "1", "L":
		return Home, nil
	case "D", "X", "E":
		return Draw, nil
	case "A", "2", "V":
		return Away, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// Probs holds home/draw/away probabilities indexed by Outcome.
type Probs [3]float64

// Of returns the probability of o.
func (p Probs) Of(o Outcome) float64 { return p[o] }

// Sum returns p[Home] + p[Draw] + p[Away].
func (p Probs) Sum() float64 { return p[Home] + p[Draw] + p[Away] }

// Normalize scales the triple to sum to 1. It fails when any component is
// negative or not finite, or when the sum is not positive.
func (p Probs) Normalize() (Probs, error) {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Probs{}, fmt.Errorf("%w: %v", ErrInvalidProbabilities, [3]float64(p))
		}
	}
	total := p.Sum()
	if total <= 0 || math.IsInf(total, 0) {
		return Probs{}, fmt.Errorf("%w: sum %v", ErrInvalidProbabilities, total)
	}
	return Probs{p[Home] / total, p[Draw] / total, p[Away] / total}, nil
}

// Ranked returns outcomes ordered by probability, highest first. Ties keep
// Home, Draw, Away order.
func (p Probs) Ranked() [3]Outcome {
	r := Outcomes
	// three elements: insertion sort keeps ties stable
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && p[r[j]] > p[r[j-1]]; j-- {
			r[j], r[j-1] = r[j-1], r[j]
		}
	}
	return r
}

// Best returns the most likely outcome.
func (p Probs) Best() Outcome { return p.Ranked()[0] }

// Gap is the difference between the two largest probabilities.
func (p Probs) Gap() float64 {
	r := p.Ranked()
	return p[r[0]] - p[r[1]]
}

// MarshalJSON renders the triple as an object.
func (p Probs) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"home":%g,"draw":%g,"away":%g}`, p[Home], p[Draw], p[Away])), nil
}
