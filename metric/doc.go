// Package metric provides Prometheus-based metrics collection and an HTTP server
// for bipstream monitoring.
//
// The package offers a centralized metrics registry managing both the core stream
// driver metrics (runs, transferred elements, short completions, run duration) and
// component-specific metrics such as the per-buffer counters registered by
// bip.WithMetrics. It includes an HTTP server exposing metrics in Prometheus format.
//
// # Architecture
//
//  1. Core Metrics: driver-level metrics registered automatically (Metrics type)
//  2. Component Registry: registration for component metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        slog.Error("metrics server failed", "error", err)
//	    }
//	}()
//
//	buf, err := bip.NewLocked(make([]byte, 4096),
//	    bip.WithMetrics(registry, "ingest"))
//
//	registry.CoreMetrics().RecordRun(metric.RunSuccess, elapsed)
//
// The server exposes Prometheus-formatted metrics at http://localhost:9090/metrics
// and a health check at http://localhost:9090/health.
//
// # Duplicate Registration
//
// Registration is keyed by "component.metric". Registering the same key twice
// returns an invalid-class error; a Prometheus-level collision (same fully
// qualified name from a different component) is reported as a "prometheus
// conflict" invalid error.
package metric
