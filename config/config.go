package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360/bipstream/errors"
	"github.com/c360/bipstream/pkg/workload"
)

// Buffer modes understood by the driver.
const (
	ModeLocked = "locked" // element loop over bip.Locked
	ModeStream = "stream" // io.Copy through bip.Stream
)

// HealthPath is where the metrics server answers health checks.
const HealthPath = "/health"

// Config represents the complete driver configuration
type Config struct {
	Buffer   BufferConfig   `mapstructure:"buffer" json:"buffer"`
	Workload WorkloadConfig `mapstructure:"workload" json:"workload"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" json:"metrics"`
}

// BufferConfig sizes the buffer under test
type BufferConfig struct {
	Capacity int    `mapstructure:"capacity" json:"capacity"`
	Mode     string `mapstructure:"mode" json:"mode"`
}

// WorkloadConfig describes the data pushed through the buffer
type WorkloadConfig struct {
	DataSize int                 `mapstructure:"data_size" json:"data_size"`
	Seed     int64               `mapstructure:"seed" json:"seed"` // 0 picks a seed per run
	Runs     int                 `mapstructure:"runs" json:"runs"`
	Produce  workload.ChunkRange `mapstructure:"produce" json:"produce"`
	Consume  workload.ChunkRange `mapstructure:"consume" json:"consume"`
	Rate     float64             `mapstructure:"rate" json:"rate"` // producer chunks per second, 0 is unlimited
	Check    bool                `mapstructure:"check" json:"check"`
}

// LogConfig selects slog level and handler
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Port    int    `mapstructure:"port" json:"port"`
	Path    string `mapstructure:"path" json:"path"`
}

// Default returns the configuration used when nothing else is supplied:
// 5000 bytes through a 200 byte buffer in chunks of 10 to 500.
func Default() *Config {
	return &Config{
		Buffer: BufferConfig{
			Capacity: 200,
			Mode:     ModeLocked,
		},
		Workload: WorkloadConfig{
			DataSize: 5000,
			Runs:     1,
			Produce:  workload.ChunkRange{Min: 10, Max: 500},
			Consume:  workload.ChunkRange{Min: 10, Max: 500},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}

// Validate checks if the config is valid. It does not modify c; mode names
// are matched exactly (the Loader lowercases them).
func (c *Config) Validate() error {
	if c.Buffer.Capacity <= 0 {
		return invalid("buffer.capacity must be positive, got %d", c.Buffer.Capacity)
	}

	if c.Buffer.Mode != ModeLocked && c.Buffer.Mode != ModeStream {
		return invalid("buffer.mode must be %q or %q, got %q", ModeLocked, ModeStream, c.Buffer.Mode)
	}

	if c.Workload.DataSize < 0 {
		return invalid("workload.data_size must not be negative, got %d", c.Workload.DataSize)
	}
	if c.Workload.Runs <= 0 {
		return invalid("workload.runs must be positive, got %d", c.Workload.Runs)
	}
	if c.Workload.Rate < 0 {
		return invalid("workload.rate must not be negative, got %g", c.Workload.Rate)
	}
	if err := c.Workload.Produce.Validate(); err != nil {
		return errors.Wrap(err, "Config", "Validate", "workload.produce")
	}
	if err := c.Workload.Consume.Validate(); err != nil {
		return errors.Wrap(err, "Config", "Validate", "workload.consume")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return invalid("log.format must be json or text, got %q", c.Log.Format)
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return invalid("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") || strings.ContainsAny(c.Metrics.Path, " {}") {
		return invalid("metrics.path must be an absolute URL path, got %q", c.Metrics.Path)
	}
	if c.Metrics.Path == HealthPath {
		return invalid("metrics.path must not be %s, the health check is served there", HealthPath)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, fmt.Sprintf(format, args...)),
		"Config", "Validate", "field check")
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
