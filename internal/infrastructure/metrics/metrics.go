// Package metrics exposes report pipeline counters to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/garyjia/process-reports/internal/report"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "process_reports"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeFailure = "failure"
)

// Collector records report pipeline observations.
type Collector struct {
	renderAttempts *prometheus.CounterVec
	fallbacks      prometheus.Counter
	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		renderAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_attempts_total",
			Help:      "Render attempts by renderer and outcome.",
		}, []string{"renderer", "outcome"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_activations_total",
			Help:      "Times the fallback renderer was invoked.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Report operations by kind and result category.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of report operations.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
	}

	for _, collector := range []prometheus.Collector{c.renderAttempts, c.fallbacks, c.operations, c.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RenderAttempt implements report.Metrics
func (c *Collector) RenderAttempt(renderer string, err error) {
	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, report.ErrRenderTimeout):
		outcome = OutcomeTimeout
	case err != nil:
		outcome = OutcomeFailure
	}
	c.renderAttempts.WithLabelValues(renderer, outcome).Inc()
}

// FallbackActivated implements report.Metrics
func (c *Collector) FallbackActivated() {
	c.fallbacks.Inc()
}

// ObserveOperation records one service call. err is classified with report.KindOf.
func (c *Collector) ObserveOperation(operation string, err error, elapsed time.Duration) {
	result := OutcomeSuccess
	if err != nil {
		result = report.KindOf(err).String()
	}
	c.operations.WithLabelValues(operation, result).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

var _ report.Metrics = (*Collector)(nil)
