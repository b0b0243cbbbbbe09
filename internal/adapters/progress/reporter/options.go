package reporter

import (
	"github.com/okian/progol/pkg/logger"
)

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithName sets the reporter name for identification and logging.
func WithName(name string) Option {
	return func(r *Reporter) {
		if name != "" {
			r.name = name
		}
	}
}

// WithHandler sets the per-snapshot callback.
func WithHandler(h Handler) Option {
	return func(r *Reporter) {
		r.handler = h
	}
}

// WithLogger sets a custom logger for the reporter.
func WithLogger(logger logger.Logger) Option {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}
