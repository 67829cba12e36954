package bip

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/bipstream/errors"
	"github.com/c360/bipstream/metric"
)

func TestStatisticsCounters(t *testing.T) {
	s := NewStatistics()

	s.Put(5, 5)
	s.Put(2, 4)
	s.Get(3, 3)
	s.Get(1, 8)
	s.Skip(2, 2)
	s.HandOff(2)
	s.HandOff(0)
	s.ProducerWait()
	s.ConsumerWait()
	s.ConsumerWait()
	s.UpdateUsed(6)
	s.UpdateUsed(3)

	assert.Equal(t, int64(2), s.Puts())
	assert.Equal(t, int64(2), s.Gets())
	assert.Equal(t, int64(1), s.Skips())
	assert.Equal(t, int64(7), s.Written())
	assert.Equal(t, int64(4), s.Read())
	assert.Equal(t, int64(2), s.Skipped())
	assert.Equal(t, int64(1), s.ShortWrites())
	assert.Equal(t, int64(1), s.ShortReads())
	assert.Equal(t, int64(2), s.HandOffs())
	assert.Equal(t, int64(1), s.ProducerWaits())
	assert.Equal(t, int64(2), s.ConsumerWaits())
	assert.Equal(t, int64(6), s.MaxUsed())
	assert.InDelta(t, 0.5, s.ShortWriteRate(), 1e-9)

	summary := s.Summary()
	assert.Equal(t, s.Written(), summary.Written)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"short_writes":1`)

}

func TestLockedWithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	l, err := NewLocked(make([]int, 4), WithMetrics(registry, "test_buffer"))
	require.NoError(t, err)
	require.NotNil(t, l.metrics)

	l.Put([]int{1, 2, 3, 4, 5})
	l.Get(make([]int, 2))
	l.Skip(1)

	assert.Equal(t, 4.0, testutil.ToFloat64(l.metrics.written))
	assert.Equal(t, 2.0, testutil.ToFloat64(l.metrics.read))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.shortWrites))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.used))
	assert.Equal(t, 0.25, testutil.ToFloat64(l.metrics.utilization))
	assert.Equal(t, float64(l.Stats().HandOffs()), testutil.ToFloat64(l.metrics.handOffs))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	var putSize *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "bipstream_buffer_put_elements" {
			putSize = mf.GetMetric()[0].GetHistogram()
		}
	}
	require.NotNil(t, putSize)
	assert.Equal(t, uint64(1), putSize.GetSampleCount())
	assert.Equal(t, 4.0, putSize.GetSampleSum())
}

func TestLockedReleaseUnregistersMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	for i := 0; i < 3; i++ {
		l, err := NewLocked(make([]int, 4), WithMetrics(registry, "reused"))
		require.NoError(t, err, "prefix is free again after Release")
		l.Put([]int{1, 2})

		count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), "bipstream_buffer_used")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		l.Release()
		l.Release()
		l.Put([]int{3})
		assert.Equal(t, int64(3), l.Stats().Written())

		count, err = testutil.GatherAndCount(registry.PrometheusRegistry(),
			"bipstream_buffer_used", "bipstream_buffer_written_total", "bipstream_buffer_put_elements")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	}
}

func TestLockedDuplicateMetricsPrefix(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	_, err := NewLocked(make([]int, 4), WithMetrics(registry, "shared"))
	require.NoError(t, err)

	_, err = NewLocked(make([]int, 4), WithMetrics(registry, "shared"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

}

func TestLockedMetricsRollbackOnConflict(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	// Occupies the gauge that is registered after all counters.
	registry.PrometheusRegistry().MustRegister(newGauge("partial", "used", "Elements currently buffered"))

	_, err := NewLocked(make([]int, 4), WithMetrics(registry, "partial"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prometheus conflict")

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(),
		"bipstream_buffer_written_total", "bipstream_buffer_put_elements")
	require.NoError(t, err)
	assert.Zero(t, count, "counters registered before the conflict are rolled back")
}

func TestWithMetricsIgnoresNilRegistry(t *testing.T) {
	l, err := NewLocked(make([]int, 4), WithMetrics(nil, "x"), WithLogger(nil), nil)
	require.NoError(t, err)
	assert.Nil(t, l.metrics)
	assert.NotNil(t, l.logger)
}
