package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records checkout and status-transition outcomes.
type OrderMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	oversell    prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_operation_duration_seconds",
		Help:    "Duration of order operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_operation_success",
		Help: "Successful order operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_operation_failure",
		Help: "Failed order operations.",
	}, []string{"operation"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions",
		Help: "Committed order status transitions by target status.",
	}, []string{"target"})
	oversell := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_oversell_rejections",
		Help: "Reservations rejected because available stock was insufficient.",
	})
	reg.MustRegister(duration, success, failure, transitions, oversell)
	return &OrderMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		transitions: transitions,
		oversell:    oversell,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *OrderMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *OrderMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *OrderMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncTransition increments the committed-transition counter for a target status.
func (m *OrderMetrics) IncTransition(target string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(target)).Inc()
}

// IncOversellRejection counts a reservation rejected for insufficient stock.
func (m *OrderMetrics) IncOversellRejection() {
	if m == nil || m.oversell == nil {
		return
	}
	m.oversell.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
