package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks broker traffic and pending request lifetimes.
type Metrics struct {
	Messages           *prometheus.CounterVec
	Outcomes           *prometheus.CounterVec
	Pending            prometheus.Gauge
	GenerationDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Messages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zkvault_broker_messages_total",
			Help: "Broker messages handled, by message and result",
		}, []string{"message", "result"}),
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zkvault_broker_outcomes_total",
			Help: "Resolved disclosure requests by outcome",
		}, []string{"outcome"}),
		Pending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "zkvault_broker_pending_requests",
			Help: "Disclosure requests waiting on an interactive surface",
		}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "zkvault_broker_generation_duration_seconds",
			Help:    "Proof generation time for pending requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

func (m *Metrics) IncrementMessage(message, result string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(message, result).Inc()
}

func (m *Metrics) IncrementOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.Pending.Set(float64(n))
}

func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDuration.Observe(d.Seconds())
}
