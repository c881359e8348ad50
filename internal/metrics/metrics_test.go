package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherValues(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RunStarted()
	m.RecordRepeat(4)
	m.RecordFile("completed", 12.5)
	m.RecordFile("failed", 0.2)
	m.RecordFile("completed", 3)
	m.RunFinished("completed")

	values := gatherValues(t, reg)
	assert.Equal(t, 2.0, values["extender_files_total{status=completed}"])
	assert.Equal(t, 1.0, values["extender_files_total{status=failed}"])
	assert.Equal(t, 1.0, values["extender_runs_total{outcome=completed}"])
	assert.Equal(t, 0.0, values["extender_active_runs"])
	assert.Equal(t, 3.0, values["extender_file_duration_seconds"])
	assert.Equal(t, 1.0, values["extender_repeat_count"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RunStarted()
		m.RecordRepeat(2)
		m.RecordFile("completed", 1)
		m.RunFinished("cancelled")
	})
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
