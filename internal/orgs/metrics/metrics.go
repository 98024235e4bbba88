// Package metrics defines the Prometheus collectors of the organizations
// service. A nil *Metrics is valid and records nothing, which keeps tests
// free of registry plumbing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// GateDecisions counts authorization gate outcomes.
	GateDecisions *prometheus.CounterVec

	// Operations counts invitation and membership operations by outcome.
	Operations *prometheus.CounterVec

	// EventDeliveries counts outbox delivery attempts.
	EventDeliveries *prometheus.CounterVec

	// TxConflicts counts compare-and-set misses surfaced as retryable conflicts.
	TxConflicts prometheus.Counter
}

// New registers every collector on reg under prefix, e.g. "orgs".
func New(reg *prometheus.Registry, prefix string) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_gate_decisions_total",
			Help: "Authorization gate outcomes",
		}, []string{"gate", "outcome", "reason"}),

		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Invitation and membership operations",
		}, []string{"operation", "outcome"}),

		EventDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_event_deliveries_total",
			Help: "Outbox event delivery attempts",
		}, []string{"type", "outcome"}),

		TxConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_tx_conflicts_total",
			Help: "Optimistic concurrency conflicts returned to callers",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) GateDecision(gate, outcome, reason string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(gate, outcome, reason).Inc()
}

func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) EventDelivery(eventType, outcome string) {
	if m == nil {
		return
	}
	m.EventDeliveries.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.TxConflicts.Inc()
}
