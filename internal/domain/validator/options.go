package validator

import (
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
)

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithBands overrides the global distribution bands.
func WithBands(home, draw, away types.Band) Option {
	return func(v *Validator) {
		v.bands = [3]types.Band{home, draw, away}
	}
}

// WithDrawRange sets the inclusive per-ticket draw bounds.
func WithDrawRange(minDraws, maxDraws int) Option {
	return func(v *Validator) {
		if minDraws >= 0 && maxDraws >= minDraws {
			v.minDraws, v.maxDraws = minDraws, maxDraws
		}
	}
}

// WithConcentration sets the per-match caps: initialCap applies to the
// first initialMatches matches, generalCap to the rest.
func WithConcentration(initialCap, generalCap float64, initialMatches int) Option {
	return func(v *Validator) {
		if initialCap > 0 {
			v.initialCap = initialCap
		}
		if generalCap > 0 {
			v.generalCap = generalCap
		}
		if initialMatches >= 0 {
			v.initialMatches = initialMatches
		}
	}
}

// WithConcentrationExempt skips the concentration check at the given
// match indices, typically the Anchors, which every ticket shares.
func WithConcentrationExempt(indices ...int) Option {
	return func(v *Validator) {
		for _, i := range indices {
			if i >= 0 && i < len(v.exempt) {
				v.exempt[i] = true
			}
		}
	}
}

// WithTicketCost sets the price of one ticket.
func WithTicketCost(cost float64) Option {
	return func(v *Validator) {
		if cost > 0 {
			v.ticketCost = cost
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}
