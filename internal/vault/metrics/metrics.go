package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks root secret lifecycle transitions.
type Metrics struct {
	SecretOperations *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		SecretOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zkvault_vault_secret_operations_total",
			Help: "Root secret lifecycle operations by outcome",
		}, []string{"operation"}),
	}
}

// IncrementOperation records one of created, migrated, regenerated, imported.
func (m *Metrics) IncrementOperation(op string) {
	if m == nil {
		return
	}
	m.SecretOperations.WithLabelValues(op).Inc()
}
