package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ledgerMetrics struct {
	operations    *prometheus.CounterVec
	manipulations prometheus.Counter
	registry      prometheus.Counter
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *ledgerMetrics
)

// LedgerMetrics returns the lazily-initialised metrics registry used to record
// ledger operation activity.
func LedgerMetrics() *ledgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &ledgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "guardtoken",
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Total ledger operations segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			manipulations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "guardtoken",
				Subsystem: "ledger",
				Name:      "manipulation_rejections_total",
				Help:      "Count of transfers rejected by the same-block manipulation guard.",
			}),
			registry: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "guardtoken",
				Subsystem: "registry",
				Name:      "updates_total",
				Help:      "Count of governance updates applied to the code hash registry.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.manipulations,
			ledgerRegistry.registry,
		)
	})
	return ledgerRegistry
}

// ObserveOperation records the outcome of a ledger operation.
func (m *ledgerMetrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveManipulationRejection records a transfer rejected by the same-block
// guard.
func (m *ledgerMetrics) ObserveManipulationRejection() {
	if m == nil {
		return
	}
	m.manipulations.Inc()
}

// ObserveRegistryUpdate records a successful registry mutation.
func (m *ledgerMetrics) ObserveRegistryUpdate() {
	if m == nil {
		return
	}
	m.registry.Inc()
}
