package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/c360/bipstream/config"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	ShowVersion bool
	Validate    bool

	// Overrides maps config keys to values of flags given on the command line.
	// Flags left at their defaults do not mask the file or the environment.
	Overrides map[string]any
}

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"capacity":     "buffer.capacity",
	"mode":         "buffer.mode",
	"data-size":    "workload.data_size",
	"seed":         "workload.seed",
	"runs":         "workload.runs",
	"produce-min":  "workload.produce.min",
	"produce-max":  "workload.produce.max",
	"consume-min":  "workload.consume.min",
	"consume-max":  "workload.consume.max",
	"rate":         "workload.rate",
	"check":        "workload.check",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics":      "metrics.enabled",
	"metrics-port": "metrics.port",
	"metrics-path": "metrics.path",
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{Overrides: make(map[string]any)}
	d := config.Default()

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("BIPSTREAM_CONFIG", ""),
		"Path to YAML configuration file (env: BIPSTREAM_CONFIG)")
	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("BIPSTREAM_CONFIG", ""),
		"Path to YAML configuration file (env: BIPSTREAM_CONFIG)")

	fs.Int("capacity", d.Buffer.Capacity,
		"Buffer capacity in bytes (env: BIPSTREAM_BUFFER_CAPACITY)")
	fs.String("mode", d.Buffer.Mode,
		"Buffer mode: locked, stream (env: BIPSTREAM_BUFFER_MODE)")
	fs.Int("data-size", d.Workload.DataSize,
		"Bytes to push through the buffer per run (env: BIPSTREAM_WORKLOAD_DATA_SIZE)")
	fs.Int64("seed", d.Workload.Seed,
		"Data and chunk seed, 0 picks one per run (env: BIPSTREAM_WORKLOAD_SEED)")
	fs.Int("runs", d.Workload.Runs,
		"Number of round trips (env: BIPSTREAM_WORKLOAD_RUNS)")
	fs.Int("produce-min", d.Workload.Produce.Min,
		"Smallest producer chunk (env: BIPSTREAM_WORKLOAD_PRODUCE_MIN)")
	fs.Int("produce-max", d.Workload.Produce.Max,
		"Largest producer chunk (env: BIPSTREAM_WORKLOAD_PRODUCE_MAX)")
	fs.Int("consume-min", d.Workload.Consume.Min,
		"Smallest consumer chunk (env: BIPSTREAM_WORKLOAD_CONSUME_MIN)")
	fs.Int("consume-max", d.Workload.Consume.Max,
		"Largest consumer chunk (env: BIPSTREAM_WORKLOAD_CONSUME_MAX)")
	fs.Float64("rate", d.Workload.Rate,
		"Producer chunks per second, 0 for unlimited (env: BIPSTREAM_WORKLOAD_RATE)")
	fs.Bool("check", d.Workload.Check,
		"Verify buffer layout after each run (env: BIPSTREAM_WORKLOAD_CHECK)")
	fs.String("log-level", d.Log.Level,
		"Log level: debug, info, warn, error (env: BIPSTREAM_LOG_LEVEL)")
	fs.String("log-format", d.Log.Format,
		"Log format: json, text (env: BIPSTREAM_LOG_FORMAT)")
	fs.Bool("metrics", d.Metrics.Enabled,
		"Serve Prometheus metrics (env: BIPSTREAM_METRICS_ENABLED)")
	fs.Int("metrics-port", d.Metrics.Port,
		"Metrics port (env: BIPSTREAM_METRICS_PORT)")
	fs.String("metrics-path", d.Metrics.Path,
		"Metrics path (env: BIPSTREAM_METRICS_PATH)")

	debug := fs.Bool("debug", false, "Shorthand for -log-level=debug")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs, output)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			cfg.Overrides[key] = f.Value.(flag.Getter).Get()
		}
	})
	if *debug {
		cfg.Overrides["log.level"] = "debug"
	}

	return cfg, nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - bip buffer round trip driver

Pushes generated data through a bi-partitioned buffer from a producer goroutine
to a consumer goroutine and verifies it arrives unchanged.

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Default run: 5000 bytes through a 200 byte buffer
  %s

  # Larger stream through the io adapter, with metrics
  %s -mode=stream -capacity=65536 -data-size=10000000 -metrics

  # Run with a config file and environment overrides
  export BIPSTREAM_WORKLOAD_RUNS=10
  %s --config=/etc/bipstream.yaml

Version: %s
Build: %s
`, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
