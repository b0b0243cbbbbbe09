package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Signals carries the contextual inputs used by calibration.
type Signals struct {
	FormDiff     float64 `json:"form_diff"`     // recent form of home minus away
	InjuryImpact float64 `json:"injury_impact"` // positive favors home
	Decisive     bool    `json:"decisive"`      // final or elimination match
}

// Match is one fixture as supplied by the caller. It is immutable; use
// NewMatch to build one.
type Match struct {
	home    string
	away    string
	probs   Probs
	signals Signals
}

// NewMatch validates and normalizes the probability triple.
func NewMatch(home, away string, probs Probs, signals Signals) (Match, error) {
	norm, err := probs.Normalize()
	if err != nil {
		return Match{}, fmt.Errorf("match %s vs %s: %w", home, away, err)
	}
	return Match{
		home:    strings.TrimSpace(home),
		away:    strings.TrimSpace(away),
		probs:   norm,
		signals: signals,
	}, nil
}

// Home returns the home team.
func (m Match) Home() string { return m.home }

// Away returns the away team.
func (m Match) Away() string { return m.away }

// Probs returns the normalized outcome probabilities.
func (m Match) Probs() Probs { return m.probs }

// Signals returns the contextual signals.
func (m Match) Signals() Signals { return m.signals }

// String renders "Home vs Away".
func (m Match) String() string { return m.home + " vs " + m.away }

// Category is the classifier's label for a match.
type Category uint8

// Match categories, in classification precedence order.
const (
	Anchor Category = iota
	DrawLeaning
	Divisor
	Volatile
	Neutral
)

// Categories lists every category in precedence order.
var Categories = [5]Category{Anchor, DrawLeaning, Divisor, Volatile, Neutral} //nolint:gochecknoglobals // fixed enumeration

func (c Category) String() string {
	switch c {
	case Anchor:
		return "Anchor"
	case DrawLeaning:
		return "DrawLeaning"
	case Divisor:
		return "Divisor"
	case Volatile:
		return "Volatile"
	case Neutral:
		return "Neutral"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ClassifiedMatch is a Match after calibration and classification.
// Derived once per run and treated as read-only afterwards.
type ClassifiedMatch struct {
	Index      int
	Match      Match
	Probs      Probs // calibrated
	Category   Category
	Suggested  Outcome
	Confidence float64 // gap between the two most likely outcomes
	Volatility float64 // normalized entropy in [0, 1]
}

// Prob returns the calibrated probability of o.
func (c ClassifiedMatch) Prob(o Outcome) float64 { return c.Probs[o] }

// Second returns the second most likely outcome.
func (c ClassifiedMatch) Second() Outcome { return c.Probs.Ranked()[1] }

// BestNonDraw returns the more likely of Home and Away.
func (c ClassifiedMatch) BestNonDraw() Outcome {
	if c.Probs[Away] > c.Probs[Home] {
		return Away
	}
	return Home
}

// Alternatives returns the two outcomes other than o.
func (c ClassifiedMatch) Alternatives(o Outcome) [2]Outcome {
	var out [2]Outcome
	i := 0
	for _, x := range Outcomes {
		if x != o {
			out[i] = x
			i++
		}
	}
	return out
}

// IsAnchor reports whether the match is fixed across all tickets.
func (c ClassifiedMatch) IsAnchor() bool { return c.Category == Anchor }

// MarshalJSON flattens the match for exports.
func (c ClassifiedMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index      int      `json:"index"`
		Home       string   `json:"home"`
		Away       string   `json:"away"`
		Raw        Probs    `json:"raw_probabilities"`
		Calibrated Probs    `json:"probabilities"`
		Signals    Signals  `json:"signals"`
		Category   Category `json:"category"`
		Suggested  Outcome  `json:"suggested"`
		Confidence float64  `json:"confidence"`
		Volatility float64  `json:"volatility"`
	}{
		Index:      c.Index,
		Home:       c.Match.Home(),
		Away:       c.Match.Away(),
		Raw:        c.Match.Probs(),
		Calibrated: c.Probs,
		Signals:    c.Match.Signals(),
		Category:   c.Category,
		Suggested:  c.Suggested,
		Confidence: c.Confidence,
		Volatility: c.Volatility,
	})
}
