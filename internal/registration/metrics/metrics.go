package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Outcomes *prometheus.CounterVec
	Attempts prometheus.Counter
	Duration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zkvault_registration_outcomes_total",
			Help: "Registration calls by outcome",
		}, []string{"outcome"}),
		Attempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkvault_registration_attempts_total",
			Help: "HTTP attempts made to relying-party backends, including retries",
		}),
		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "zkvault_registration_duration_seconds",
			Help:    "Registration call latency including retries",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveOutcome(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
	m.Duration.Observe(d.Seconds())
}

func (m *Metrics) IncrementAttempts() {
	if m == nil {
		return
	}
	m.Attempts.Inc()
}
