package enrichment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcomes counted by Metrics.Tasks.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeDropped     = "dropped"
	OutcomeInvalid     = "invalid"
)

// Metrics provides observability for background enrichment.
type Metrics struct {
	// Events accepted for background processing, by kind
	Emitted *prometheus.CounterVec

	// Finished tasks by kind and outcome
	Tasks *prometheus.CounterVec

	TaskLatency *prometheus.HistogramVec

	// 1 while the breaker of a kind is open
	BreakerOpen *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_enrichment_events_emitted_total",
			Help: "Enrichment events accepted for background processing",
		}, []string{"kind"}),

		Tasks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_enrichment_tasks_total",
			Help: "Enrichment tasks by kind and outcome",
		}, []string{"kind", "outcome"}),

		TaskLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "migratio_enrichment_task_duration_seconds",
			Help:    "Duration of enrichment tasks",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),

		BreakerOpen: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "migratio_enrichment_circuit_open",
			Help: "Whether the circuit breaker for an event kind is open",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncrementEmitted(kind string) {
	if m != nil {
		m.Emitted.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementTask(kind, outcome string) {
	if m != nil {
		m.Tasks.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) ObserveTask(kind string, d time.Duration) {
	if m != nil {
		m.TaskLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) SetBreakerOpen(kind string, open bool) {
	if m != nil {
		v := 0.0
		if open {
			v = 1
		}
		m.BreakerOpen.WithLabelValues(kind).Set(v)
	}
}
