package classifier

import "github.com/okian/progol/pkg/logger"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// Weights are the calibration coefficients of the contextual signals.
type Weights struct {
	Form     float64
	Injury   float64
	Decisive float64
}

// Thresholds are the category boundaries.
type Thresholds struct {
	AnchorMin     float64 // top probability must exceed this
	AnchorGap     float64 // and beat the runner-up by at least this
	DrawMin       float64 // draw must exceed this to lean draw
	DivisorMin    float64 // inclusive lower edge of the Divisor band
	DivisorMax    float64 // exclusive upper edge of the Divisor band
	VolatileGap   float64 // top-two gap below this is Volatile
	DrawCloseness float64 // |home-away| below this triggers the draw boost
	DrawBoost     float64
	DrawCap       float64
}

// WithWeights overrides the calibration weights.
func WithWeights(w Weights) Option {
	return func(c *Classifier) {
		c.weights = w
	}
}

// WithThresholds overrides the category boundaries. Zero fields keep
// their defaults.
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		setIfPositive(&c.thresholds.AnchorMin, t.AnchorMin)
		setIfPositive(&c.thresholds.AnchorGap, t.AnchorGap)
		setIfPositive(&c.thresholds.DrawMin, t.DrawMin)
		setIfPositive(&c.thresholds.DivisorMin, t.DivisorMin)
		setIfPositive(&c.thresholds.DivisorMax, t.DivisorMax)
		setIfPositive(&c.thresholds.VolatileGap, t.VolatileGap)
		setIfPositive(&c.thresholds.DrawCloseness, t.DrawCloseness)
		setIfPositive(&c.thresholds.DrawBoost, t.DrawBoost)
		setIfPositive(&c.thresholds.DrawCap, t.DrawCap)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.log = l
		}
	}
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
