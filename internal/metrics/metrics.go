// Package metrics defines the Prometheus collectors for the card engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "routecard"

// Metrics holds the collectors.
type Metrics struct {
	OperationActions *prometheus.CounterVec
	StoreSaves       *prometheus.CounterVec
	Degraded         prometheus.Gauge
	Cards            *prometheus.GaugeVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OperationActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_actions_total",
			Help:      "Operation actions by action and result (applied or rejected).",
		}, []string{"action", "result"}),
		StoreSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_saves_total",
			Help:      "Collection saves by result (ok or error).",
		}, []string{"result"}),
		Degraded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_degraded",
			Help:      "1 while the last save failed.",
		}),
		Cards: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cards",
			Help:      "Cards by status, archived cards excluded.",
		}, []string{"status"}),
	}
}

// ObserveAction counts one operation action.
func (m *Metrics) ObserveAction(action string, applied bool) {
	if m == nil {
		return
	}
	result := "applied"
	if !applied {
		result = "rejected"
	}
	m.OperationActions.WithLabelValues(action, result).Inc()
}

// ObserveSave counts one save and updates the degraded gauge.
func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.StoreSaves.WithLabelValues("error").Inc()
		m.Degraded.Set(1)
		return
	}
	m.StoreSaves.WithLabelValues("ok").Inc()
	m.Degraded.Set(0)
}

// SetCardCounts replaces the per-status card gauge.
func (m *Metrics) SetCardCounts(counts map[string]int) {
	if m == nil {
		return
	}
	m.Cards.Reset()
	for status, n := range counts {
		m.Cards.WithLabelValues(status).Set(float64(n))
	}
}
