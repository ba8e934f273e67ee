package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveImport("csv", OutcomeOK, 4, 20*time.Millisecond)
	m.ObserveImport("csv", OutcomeOK, 2, 10*time.Millisecond)
	m.ObserveImport("pdf", OutcomeEmpty, 0, time.Second)
	m.ObserveAttempt("pdf-table", OutcomeEmpty)
	m.ObserveAttempt("pdf-text", OutcomeError)
	m.ObserveDropped("invalid_date", 2)
	m.ObserveDropped("invalid_amount", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Imports.WithLabelValues("csv", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues("pdf", OutcomeEmpty)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.Transactions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attempts.WithLabelValues("pdf-text", OutcomeError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedRows.WithLabelValues("invalid_date")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DroppedRows))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveImport("csv", OutcomeOK, 1, time.Millisecond)
		m.ObserveAttempt("csv", OutcomeOK)
		m.ObserveDropped("invalid_date", 1)
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObserveImport("ofx", OutcomeOK, 2, time.Millisecond)

	path := filepath.Join(t.TempDir(), "extrato.prom")
	require.NoError(t, m.WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `extrato_imports_total{format="ofx",outcome="ok"} 1`)
	assert.Contains(t, string(body), "extrato_transactions_total 2")
}
