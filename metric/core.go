package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results used for the "result" label of runs_total
const (
	RunSuccess   = "success"
	RunMismatch  = "mismatch"  // data compared and differed
	RunCancelled = "cancelled" // interrupted before the round trip finished
	RunError     = "error"     // any other failure; no data was compared
)

// Metrics contains the stream driver metrics (not per-buffer metrics)
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	ElementsTransferred *prometheus.CounterVec
	TransferCalls       *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	Mismatches          prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all stream driver metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bipstream",
				Subsystem: "driver",
				Name:      "runs_total",
				Help:      "Total number of round trip runs by result",
			},
			[]string{"result"},
		),

		ElementsTransferred: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bipstream",
				Subsystem: "driver",
				Name:      "elements_total",
				Help:      "Total number of elements moved through the buffer",
			},
			[]string{"direction"},
		),

		TransferCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bipstream",
				Subsystem: "driver",
				Name:      "calls_total",
				Help:      "Total number of put/get calls issued, split by short completions",
			},
			[]string{"direction", "completion"},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "bipstream",
				Subsystem: "driver",
				Name:      "run_duration_seconds",
				Help:      "Round trip run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		Mismatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "bipstream",
				Subsystem: "driver",
				Name:      "mismatches_total",
				Help:      "Total number of round trip runs whose output differed from input",
			},
		),
	}
}

// RecordRun records the result and duration of one round trip. Only
// RunMismatch counts towards mismatches_total.
func (c *Metrics) RecordRun(result string, duration time.Duration) {
	if result == RunMismatch {
		c.Mismatches.Inc()
	}
	c.RunsTotal.WithLabelValues(result).Inc()
	c.RunDuration.Observe(duration.Seconds())
}

// RecordElements adds to the element counter for a direction ("in" or "out")
func (c *Metrics) RecordElements(direction string, count int) {
	c.ElementsTransferred.WithLabelValues(direction).Add(float64(count))
}

// RecordCalls records full and short completions for a direction
func (c *Metrics) RecordCalls(direction string, calls, short int) {
	c.TransferCalls.WithLabelValues(direction, "full").Add(float64(calls - short))
	c.TransferCalls.WithLabelValues(direction, "short").Add(float64(short))
}
