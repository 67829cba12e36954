// Package bipstream is a bi-partitioned circular buffer with a blocking
// producer/consumer wrapper, a byte stream adapter and a round trip driver.
//
// # Layout
//
//   - pkg/bip: the buffer. Buffer is the single goroutine core, Locked adds a
//     mutex, two condition variables and an end of stream flag, Stream exposes
//     Locked[byte] through io.Reader, io.Writer, io.Closer, io.ReaderFrom and
//     io.WriterTo.
//   - pkg/workload: data generation and chunked producer/consumer loops over
//     small Sink and Source interfaces.
//   - config: driver configuration with a viper loader (YAML file, BIPSTREAM_*
//     environment, flag overrides).
//   - metric: Prometheus registry, driver metrics and the /metrics server.
//   - errors: classified errors (transient, invalid, fatal) and the standard
//     "component.method: action failed" wrapping.
//   - cmd/bipstream: the driver binary.
//
// # Quick Start
//
//	l, _ := bip.NewLocked(make([]byte, 200))
//
//	go func() {
//		defer l.SetConsumed()
//		l.PutAll(data)
//	}()
//
//	out := make([]byte, len(data))
//	n := l.GetAll(out)
//
// Running the driver:
//
//	go run ./cmd/bipstream -capacity=200 -data-size=5000 -runs=10
//	go run ./cmd/bipstream -mode=stream -capacity=65536 -data-size=100000000 -metrics
package bipstream
