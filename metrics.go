package sheetdesk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts backend calls and cache lookups.
type Metrics struct {
	BackendCalls *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BackendCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetdesk",
			Name:      "backend_calls_total",
			Help:      "Spreadsheet backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetdesk",
			Name:      "cache_lookups_total",
			Help:      "List cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) backendCall(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BackendCalls.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
