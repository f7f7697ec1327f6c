package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the engine
type Registry struct {
	// Solver Metrics
	SolvesTotal      *prometheus.CounterVec
	SolveDuration    prometheus.Histogram
	TargetLPsTotal   *prometheus.CounterVec
	TargetLPDuration *prometheus.HistogramVec
	SolveNodes       prometheus.Histogram

	// Strategy Metrics
	BaselineAllocationsTotal *prometheus.CounterVec
	DefenderUtility          *prometheus.GaugeVec
	ComparisonsTotal         prometheus.Counter

	// System Metrics
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
// Tests and embedded engines should use their own registry rather than
// DefaultRegistry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initSolverMetrics()
	r.initStrategyMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
