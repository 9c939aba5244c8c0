package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the approval engine.
type Metrics struct {
	registry *prometheus.Registry

	ApprovalActions *prometheus.CounterVec
	BulkItems       *prometheus.CounterVec
	OutboxPublished prometheus.Counter
	OutboxFailed    prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ApprovalActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_approval_actions_total",
			Help: "Approval decisions processed, by entity, action and outcome.",
		}, []string{"entity", "action", "outcome"}),
		BulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_bulk_items_total",
			Help: "Bulk items processed, by entity and per-item status.",
		}, []string{"entity", "status"}),
		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhive_outbox_published_total",
			Help: "Outbox events successfully published.",
		}),
		OutboxFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhive_outbox_publish_failures_total",
			Help: "Outbox publish attempts that failed.",
		}),
	}

	registry.MustRegister(
		m.ApprovalActions,
		m.BulkItems,
		m.OutboxPublished,
		m.OutboxFailed,
	)

	return m
}

// RecordAction increments the approval counter for a single decision.
func (m *Metrics) RecordAction(entity, action, outcome string) {
	m.ApprovalActions.WithLabelValues(entity, action, outcome).Inc()
}

// RecordBulkItem increments the per-item bulk counter.
func (m *Metrics) RecordBulkItem(entity, status string) {
	m.BulkItems.WithLabelValues(entity, status).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
