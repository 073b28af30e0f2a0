package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

// metricValue returns the counter or gauge value of the series whose labels
// include every pair in labels.
func metricValue(t *testing.T, m *MetricsService, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	series:
		for _, metric := range family.GetMetric() {
			got := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				got[pair.GetName()] = pair.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue series
				}
			}
			if metric.GetCounter() != nil {
				return metric.GetCounter().GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveBackendCall("Karyawan", sheets.OpFetch, sheets.OutcomeOK, 20*time.Millisecond)
	m.ObserveBackendCall("Karyawan", sheets.OpFetch, sheets.OutcomeUnavailable, 0)
	m.SetWarnings([]models.DataQualityWarning{
		{Kind: models.WarningUnknownEmployee},
		{Kind: models.WarningUnknownEmployee},
		{Kind: models.WarningInvalidTimestamp},
	})
	m.RecordBatchItem(BatchSaved)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	assert.Equal(t, 1.0, metricValue(t, m, "absensi_backend_calls_total", map[string]string{"outcome": sheets.OutcomeOK}))
	assert.Equal(t, 1.0, metricValue(t, m, "absensi_backend_calls_total", map[string]string{"outcome": sheets.OutcomeUnavailable}))
	assert.Equal(t, 2.0, metricValue(t, m, "absensi_data_quality_warnings", map[string]string{"kind": string(models.WarningUnknownEmployee)}))

	m.SetWarnings([]models.DataQualityWarning{{Kind: models.WarningInvalidTimestamp}})
	assert.Equal(t, 0.0, metricValue(t, m, "absensi_data_quality_warnings", map[string]string{"kind": string(models.WarningUnknownEmployee)}))
	assert.Equal(t, 1.0, metricValue(t, m, "absensi_data_quality_warnings", map[string]string{"kind": string(models.WarningInvalidTimestamp)}))
	assert.Equal(t, 1.0, metricValue(t, m, "absensi_batch_save_items_total", map[string]string{"outcome": BatchSaved}))
	assert.InDelta(t, 2.0/3.0, metricValue(t, m, "absensi_cache_hit_ratio", nil), 1e-9)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveBackendCall("s", "fetch", "ok", time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.SetWarnings([]models.DataQualityWarning{{Kind: models.WarningUnknownEmployee}})
		m.RecordBatchItem(BatchFailed)
	})
}
