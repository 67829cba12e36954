package bip

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/bipstream/metric"
)

// bufferMetrics holds Prometheus metrics for a Locked buffer.
type bufferMetrics struct {
	written     prometheus.Counter
	read        prometheus.Counter
	skipped     prometheus.Counter
	shortWrites prometheus.Counter
	shortReads  prometheus.Counter
	handOffs    prometheus.Counter
	waits       *prometheus.CounterVec
	putSize     prometheus.Histogram

	used        prometheus.Gauge
	utilization prometheus.Gauge

	registry   metric.MetricsRegistrar
	prefix     string
	registered []string
}

func newCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "bipstream",
		Subsystem:   "buffer",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

func newGauge(prefix, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "bipstream",
		Subsystem:   "buffer",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

// newBufferMetrics creates and registers buffer metrics with the provided registry.
// On failure nothing stays registered under prefix.
func newBufferMetrics(registry metric.MetricsRegistrar, prefix string) (*bufferMetrics, error) {
	m := &bufferMetrics{
		written:     newCounter(prefix, "written_total", "Total number of elements written"),
		read:        newCounter(prefix, "read_total", "Total number of elements read"),
		skipped:     newCounter(prefix, "skipped_total", "Total number of elements skipped"),
		shortWrites: newCounter(prefix, "short_writes_total", "Total number of writes that stopped at a partition boundary"),
		shortReads:  newCounter(prefix, "short_reads_total", "Total number of reads that stopped at a partition boundary"),
		handOffs:    newCounter(prefix, "hand_offs_total", "Total number of partition role changes"),
		waits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "bipstream",
			Subsystem:   "buffer",
			Name:        "waits_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of blocking waits by side",
		}, []string{"side"}),
		putSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "bipstream",
			Subsystem:   "buffer",
			Name:        "put_elements",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Elements accepted per put call",
			Buckets:     prometheus.ExponentialBuckets(1, 4, 10),
		}),
		used:        newGauge(prefix, "used", "Elements currently buffered"),
		utilization: newGauge(prefix, "utilization", "Buffer utilization (0.0 to 1.0)"),
		registry:    registry,
		prefix:      prefix,
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"buffer_written", m.written},
		{"buffer_read", m.read},
		{"buffer_skipped", m.skipped},
		{"buffer_short_writes", m.shortWrites},
		{"buffer_short_reads", m.shortReads},
		{"buffer_hand_offs", m.handOffs},
	}
	for _, c := range counters {
		if err := m.track(c.name, registry.RegisterCounter(prefix, c.name, c.c)); err != nil {
			return nil, err
		}
	}
	if err := m.track("buffer_waits", registry.RegisterCounterVec(prefix, "buffer_waits", m.waits)); err != nil {
		return nil, err
	}
	if err := m.track("buffer_put_elements",
		registry.RegisterHistogram(prefix, "buffer_put_elements", m.putSize)); err != nil {
		return nil, err
	}
	if err := m.track("buffer_used", registry.RegisterGauge(prefix, "buffer_used", m.used)); err != nil {
		return nil, err
	}
	if err := m.track("buffer_utilization",
		registry.RegisterGauge(prefix, "buffer_utilization", m.utilization)); err != nil {
		return nil, err
	}

	return m, nil
}

// track remembers a successful registration, or rolls back every earlier one.
func (m *bufferMetrics) track(name string, err error) error {
	if err != nil {
		m.unregister()
		return err
	}
	m.registered = append(m.registered, name)
	return nil
}

// unregister removes every registered collector. It is safe to call twice.
func (m *bufferMetrics) unregister() {
	for _, name := range m.registered {
		m.registry.Unregister(m.prefix, name)
	}
	m.registered = nil
}

func (m *bufferMetrics) recordPut(n, requested int) {
	m.written.Add(float64(n))
	m.putSize.Observe(float64(n))
	if n < requested {
		m.shortWrites.Inc()
	}
}

func (m *bufferMetrics) recordGet(n, requested int) {
	m.read.Add(float64(n))
	if n < requested {
		m.shortReads.Inc()
	}
}

func (m *bufferMetrics) recordSkip(n, requested int) {
	m.skipped.Add(float64(n))
	if n < requested {
		m.shortReads.Inc()
	}
}

func (m *bufferMetrics) recordHandOffs(n int) {
	if n > 0 {
		m.handOffs.Add(float64(n))
	}
}

func (m *bufferMetrics) recordWait(side string) {
	m.waits.WithLabelValues(side).Inc()
}

// updateUsed sets the buffered element count and utilization.
func (m *bufferMetrics) updateUsed(used, capacity int) {
	m.used.Set(float64(used))
	if capacity > 0 {
		m.utilization.Set(float64(used) / float64(capacity))
	}
}
