// Package metrics provides Prometheus metrics for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	RequestsTotal          *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
	EntriesLoggedTotal     *prometheus.CounterVec
	TargetsCompletedTotal  *prometheus.CounterVec
	WebhookDeliveriesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitedge_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "habitedge_http_request_duration_seconds",
				Help:    "HTTP request duration by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		EntriesLoggedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitedge_entries_logged_total",
				Help: "Total journal entries logged by entry type.",
			},
			[]string{"type"},
		),
		TargetsCompletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitedge_targets_completed_total",
				Help: "Total target completions by kind.",
			},
			[]string{"kind"},
		),
		WebhookDeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitedge_webhook_deliveries_total",
				Help: "Outbound webhook deliveries by result.",
			},
			[]string{"result"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.EntriesLoggedTotal)
	reg.MustRegister(m.TargetsCompletedTotal)
	reg.MustRegister(m.WebhookDeliveriesTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter and records duration.
func (m *Metrics) RecordRequest(method, route, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordEntryLogged increments the journal entry counter.
func (m *Metrics) RecordEntryLogged(entryType string) {
	m.EntriesLoggedTotal.WithLabelValues(entryType).Inc()
}

// RecordTargetCompleted increments the completion counter.
func (m *Metrics) RecordTargetCompleted(kind string) {
	m.TargetsCompletedTotal.WithLabelValues(kind).Inc()
}

// RecordWebhookDelivery increments the delivery counter.
func (m *Metrics) RecordWebhookDelivery(result string) {
	m.WebhookDeliveriesTotal.WithLabelValues(result).Inc()
}
