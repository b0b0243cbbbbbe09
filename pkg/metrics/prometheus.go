// Package metrics provides Prometheus metrics for the Progol portfolio optimizer.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the optimizer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline Metrics
	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	stageDuration      *prometheus.HistogramVec
	matchesByCategory  *prometheus.GaugeVec
	ticketsGenerated   *prometheus.CounterVec
	drawsAdjusted      prometheus.Counter
	portfolioProbLast  prometheus.Gauge
	portfolioValidLast prometheus.Gauge

	// GRASP Metrics
	candidatePoolSize     prometheus.Gauge
	candidatesDuplicate   prometheus.Counter
	constructionSelection prometheus.Counter

	// Annealing Metrics
	annealIterations   prometheus.Counter
	neighborsAccepted  *prometheus.CounterVec
	neighborsRejected  prometheus.Counter
	annealTemperature  prometheus.Gauge
	annealBestScore    prometheus.Gauge
	annealCurrentScore prometheus.Gauge

	// Validation Metrics
	validationsTotal    *prometheus.CounterVec
	validationViolation *prometheus.CounterVec

	// Progress stream Metrics
	progressPublished prometheus.Counter
	progressDropped   prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "progol",
		subsystem:        "optimizer",
		histogramBuckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of optimization runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Wall time of a full classify-generate-optimize-validate run",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Wall time per pipeline stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.matchesByCategory = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "classified_matches",
		Help:        "Matches per category in the latest classification",
		ConstLabels: m.constLabels,
	}, []string{"category"})

	m.ticketsGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tickets_generated_total",
		Help:        "Tickets produced by construction routines, by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.drawsAdjusted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "draw_adjustments_total",
		Help:        "Tickets whose draw count had to be repaired",
		ConstLabels: m.constLabels,
	})

	m.portfolioProbLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "portfolio_probability",
		Help:        "P(at least one ticket with 11+ hits) of the latest final portfolio",
		ConstLabels: m.constLabels,
	})

	m.portfolioValidLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "portfolio_valid",
		Help:        "1 if the latest final portfolio passed validation, else 0",
		ConstLabels: m.constLabels,
	})

	m.candidatePoolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grasp_candidate_pool_size",
		Help:        "Unique candidates in the latest GRASP pool",
		ConstLabels: m.constLabels,
	})

	m.candidatesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grasp_candidates_duplicate_total",
		Help:        "Randomized-greedy candidates discarded as duplicates",
		ConstLabels: m.constLabels,
	})

	m.constructionSelection = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grasp_selections_total",
		Help:        "Candidates added to the portfolio during GRASP construction",
		ConstLabels: m.constLabels,
	})

	m.annealIterations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "anneal_iterations_total",
		Help:        "Simulated annealing iterations executed",
		ConstLabels: m.constLabels,
	})

	m.neighborsAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "anneal_neighbors_accepted_total",
		Help:        "Neighbors accepted, split by improving vs metropolis",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.neighborsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "anneal_neighbors_invalid_total",
		Help:        "Neighbors discarded because they failed validation",
		ConstLabels: m.constLabels,
	})

	m.annealTemperature = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "anneal_temperature",
		Help:        "Current annealing temperature",
		ConstLabels: m.constLabels,
	})

	m.annealBestScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "anneal_best_score",
		Help:        "Best validated objective seen in the current run",
		ConstLabels: m.constLabels,
	})

	m.annealCurrentScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "anneal_current_score",
		Help:        "Objective of the current (exploratory) portfolio",
		ConstLabels: m.constLabels,
	})

	m.validationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validations_total",
		Help:        "Portfolio validations by verdict",
		ConstLabels: m.constLabels,
	}, []string{"verdict"})

	m.validationViolation = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validation_violations_total",
		Help:        "Hard-constraint violations by check",
		ConstLabels: m.constLabels,
	}, []string{"check"})

	m.progressPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "progress_published_total",
		Help:        "Progress snapshots delivered to the progress queue",
		ConstLabels: m.constLabels,
	})

	m.progressDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "progress_dropped_total",
		Help:        "Progress snapshots dropped because the queue was full or closed",
		ConstLabels: m.constLabels,
	})
}

// Pipeline Metrics Functions.

// RecordRun counts a finished run; outcome is "valid", "invalid" or "error".
func RecordRun(outcome string, durationMs float64) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(stage string, durationMs float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(durationMs)
}

// UpdateMatchesByCategory sets the number of matches in a category.
func UpdateMatchesByCategory(category string, count int) {
	globalManager.matchesByCategory.WithLabelValues(category).Set(float64(count))
}

// RecordTicketsGenerated adds n tickets of the given kind.
func RecordTicketsGenerated(kind string, n int) {
	globalManager.ticketsGenerated.WithLabelValues(kind).Add(float64(n))
}

// RecordDrawAdjustment increments the draw repair counter.
func RecordDrawAdjustment() {
	globalManager.drawsAdjusted.Inc()
}

// UpdateFinalPortfolio records the objective and verdict of the final portfolio.
func UpdateFinalPortfolio(probability float64, valid bool) {
	globalManager.portfolioProbLast.Set(probability)
	if valid {
		globalManager.portfolioValidLast.Set(1)
		return
	}
	globalManager.portfolioValidLast.Set(0)
}

// GRASP Metrics Functions.

// UpdateCandidatePoolSize sets the GRASP pool size.
func UpdateCandidatePoolSize(size int) {
	globalManager.candidatePoolSize.Set(float64(size))
}

// RecordCandidateDuplicate increments the duplicate candidate counter.
func RecordCandidateDuplicate() {
	globalManager.candidatesDuplicate.Inc()
}

// RecordConstructionSelection increments the GRASP selection counter.
func RecordConstructionSelection() {
	globalManager.constructionSelection.Inc()
}

// Annealing Metrics Functions.

// RecordAnnealIteration increments the iteration counter and sets the temperature.
func RecordAnnealIteration(temperature float64) {
	globalManager.annealIterations.Inc()
	globalManager.annealTemperature.Set(temperature)
}

// RecordNeighborAccepted counts an accepted neighbor. improving is false for
// moves accepted through the Metropolis criterion.
func RecordNeighborAccepted(improving bool) {
	if improving {
		globalManager.neighborsAccepted.WithLabelValues("improving").Inc()
		return
	}
	globalManager.neighborsAccepted.WithLabelValues("metropolis").Inc()
}

// RecordNeighborRejected counts a neighbor discarded by the validator.
func RecordNeighborRejected() {
	globalManager.neighborsRejected.Inc()
}

// UpdateAnnealScores sets the best and current objective gauges.
func UpdateAnnealScores(best, current float64) {
	globalManager.annealBestScore.Set(best)
	globalManager.annealCurrentScore.Set(current)
}

// Validation Metrics Functions.

// RecordValidation counts a validation verdict.
func RecordValidation(valid bool) {
	if valid {
		globalManager.validationsTotal.WithLabelValues("valid").Inc()
		return
	}
	globalManager.validationsTotal.WithLabelValues("invalid").Inc()
}

// RecordViolation counts a violation of the named check.
func RecordViolation(check string) {
	globalManager.validationViolation.WithLabelValues(check).Inc()
}

// Progress Metrics Functions.

// RecordProgressPublished increments the delivered snapshot counter.
func RecordProgressPublished() {
	globalManager.progressPublished.Inc()
}

// RecordProgressDropped increments the dropped snapshot counter.
func RecordProgressDropped() {
	globalManager.progressDropped.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current registry contents in the text exposition
// format, for pickup by a node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}
