package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the billing counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	PlanChanges  *prometheus.CounterVec
	Sessions     *prometheus.CounterVec
	GiftTrials   *prometheus.CounterVec
	WebhookEvent *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PlanChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "plan_changes_total",
			Help:      "Plan change requests by route and result",
		}, []string{"route", "result"}),
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "sessions_total",
			Help:      "Hosted sessions created by kind and result",
		}, []string{"kind", "result"}),
		GiftTrials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "gift_trials_total",
			Help:      "Gift trial requests by status",
		}, []string{"status"}),
		WebhookEvent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "webhook_events_total",
			Help:      "Verified provider webhook events by type and result",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.PlanChanges, m.Sessions, m.GiftTrials, m.WebhookEvent)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ErrorCode(err)
	}
	return "ok"
}
