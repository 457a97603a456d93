package featuredb

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Insert outcomes recorded by Metrics.
const (
	outcomeAccepted   = "accepted"
	outcomeBadName    = "rejected_name"
	outcomeChromosome = "rejected_chromosome"
	outcomeFull       = "rejected_full"
)

// Metrics holds the prometheus collectors for the index.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Inserts  *prometheus.CounterVec
	Queries  *prometheus.CounterVec
	Sessions prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg, if non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Inserts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featuredb_inserts_total",
				Help: "Index insertions by outcome (accepted, rejected_name, rejected_chromosome, rejected_full).",
			},
			[]string{"outcome"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featuredb_queries_total",
				Help: "Index queries by operation.",
			},
			[]string{"op"},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featuredb_sessions",
				Help: "Number of live session partitions.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Inserts, m.Queries, m.Sessions)
	}
	return m
}

func (m *Metrics) insert(outcome string) {
	if m == nil {
		return
	}
	m.Inserts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) query(op string) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(op).Inc()
}

func (m *Metrics) sessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}
