package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistrySeedsInitialGaugeValues(t *testing.T) {
	r := NewRegistry(2_000_000_000, 1_700_000_000)

	require.Equal(t, float64(2_000_000_000), gaugeValue(t, r.MemoryLimitBytes))
	require.Equal(t, float64(0), gaugeValue(t, r.KnownCVEs))
	require.Equal(t, float64(1_700_000_000), gaugeValue(t, r.LastSecurityAuditTimestamp))
}

func TestRecordFileProcessedIncrementsCounters(t *testing.T) {
	r := NewRegistry(0, 0)
	r.RecordFileProcessed("png", 1024, 0.01)

	m := &dto.Metric{}
	require.NoError(t, r.FilesProcessedTotal.WithLabelValues("png", "success").Write(m))
	require.Equal(t, float64(1), m.GetCounter().GetValue())
}

func TestRecordFileFailedIncrementsBothCounters(t *testing.T) {
	r := NewRegistry(0, 0)
	r.RecordFileFailed("jpeg", "StructuralParseFailure")

	m := &dto.Metric{}
	require.NoError(t, r.FilesFailedTotal.WithLabelValues("jpeg", "StructuralParseFailure").Write(m))
	require.Equal(t, float64(1), m.GetCounter().GetValue())

	require.NoError(t, r.ErrorsTotal.WithLabelValues("StructuralParseFailure").Write(m))
	require.Equal(t, float64(1), m.GetCounter().GetValue())
}

func gaugeValue(t *testing.T, g interface {
	Write(*dto.Metric) error
}) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}
