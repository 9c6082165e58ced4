package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for workflow transitions and the
// external gateways. A nil *Metrics is safe to call so tests can omit it.
type Metrics struct {
	WorkflowOutcome *prometheus.CounterVec
	GatewayLatency  *prometheus.HistogramVec
	GatewayFailures *prometheus.CounterVec
}

// New registers and returns the service metrics.
func New() *Metrics {
	return &Metrics{
		WorkflowOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estately_workflow_outcomes_total",
			Help: "Registration workflow outcomes by entity and action",
		}, []string{"entity", "action"}),

		GatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estately_gateway_duration_seconds",
			Help:    "Duration of external gateway calls by target",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"target"}),

		GatewayFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estately_gateway_failures_total",
			Help: "External gateway soft failures by target and reason",
		}, []string{"target", "reason"}),
	}
}

// IncrementOutcome records a workflow transition outcome.
func (m *Metrics) IncrementOutcome(entity, action string) {
	if m != nil {
		m.WorkflowOutcome.WithLabelValues(entity, action).Inc()
	}
}

// ObserveGateway records the duration of an external gateway call.
func (m *Metrics) ObserveGateway(target string, d time.Duration) {
	if m != nil {
		m.GatewayLatency.WithLabelValues(target).Observe(d.Seconds())
	}
}

// IncrementGatewayFailure records a soft gateway failure.
func (m *Metrics) IncrementGatewayFailure(target, reason string) {
	if m != nil {
		m.GatewayFailures.WithLabelValues(target, reason).Inc()
	}
}
