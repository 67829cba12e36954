package bip

import (
	"log/slog"

	"github.com/c360/bipstream/metric"
)

// Option configures a Locked buffer or a Stream using the functional options pattern.
type Option func(*options)

// options holds internal configuration for Locked instances.
// Stats are always collected; metrics and logging are optional.
type options struct {
	// metricsReg is optional. When set, statistics are also exported as Prometheus metrics.
	metricsReg metric.MetricsRegistrar

	// metricsPrefix is the component label for Prometheus metrics.
	metricsPrefix string

	logger *slog.Logger
}

// WithMetrics enables Prometheus metrics export for buffer statistics under the
// component label prefix. Call Locked.Release to unregister them.
// The option is ignored when registry is nil or prefix is empty.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(opts *options) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithLogger sets the logger used for debug output. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return o
}
