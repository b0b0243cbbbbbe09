package service

import (
	"time"

	"github.com/okian/progol/internal/config"
	"github.com/okian/progol/internal/domain/optimizer"
	"github.com/okian/progol/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress forwards optimizer snapshots to sink.
func WithProgress(sink optimizer.ProgressSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.progress = sink
		}
	}
}

// WithSeed overrides optimizer.seed for every stage that draws random numbers.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = &seed
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunID sets the generator of run identifiers.
func WithRunID(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}
