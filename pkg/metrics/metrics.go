// Package metrics exposes Prometheus collectors for statement imports. The CLI
// has no HTTP endpoint, so collectors are dumped to a textfile that the node
// exporter textfile collector can pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "extrato"

// Outcomes recorded on import and detector counters.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeUnsupported = "unsupported"
)

// Metrics groups the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	Imports      *prometheus.CounterVec
	Attempts     *prometheus.CounterVec
	DroppedRows  *prometheus.CounterVec
	Transactions prometheus.Counter
	Duration     *prometheus.HistogramVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Statement files processed, by format and outcome.",
		}, []string{"format", "outcome"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_attempts_total",
			Help:      "Extraction strategy runs, by detector and outcome.",
		}, []string{"detector", "outcome"}),
		DroppedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Rows discarded during normalization, by reason.",
		}, []string{"reason"}),
		Transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions that reached the ledger.",
		}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of a full import, by format.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"format"}),
	}

	m.registry.MustRegister(m.Imports, m.Attempts, m.DroppedRows, m.Transactions, m.Duration)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveImport records one finished import.
func (m *Metrics) ObserveImport(format, outcome string, transactions int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(format, outcome).Inc()
	m.Transactions.Add(float64(transactions))
	m.Duration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveAttempt records one detector run.
func (m *Metrics) ObserveAttempt(detector, outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(detector, outcome).Inc()
}

// ObserveDropped adds n dropped rows for reason.
func (m *Metrics) ObserveDropped(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DroppedRows.WithLabelValues(reason).Add(float64(n))
}

// WriteTextfile writes every collector in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
