package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/c360/bipstream/errors"
)

// EnvPrefix is the prefix for environment overrides, e.g. BIPSTREAM_BUFFER_CAPACITY.
const EnvPrefix = "BIPSTREAM"

// Loader reads configuration from defaults, an optional YAML file and the environment
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load builds a Config. An empty path skips the file; a path that does not
// exist is an error.
func (l *Loader) Load(path string) (*Config, error) {
	l.setDefaults()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				return nil, errors.WrapFatal(
					fmt.Errorf("%w: %s", errors.ErrConfigNotFound, path), "Loader", "Load", "read config file")
			}
			return nil, errors.WrapFatal(
				fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err), "Loader", "Load", "read config file")
		}
	}

	// Expand ${VAR} references in string values
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err), "Loader", "Load", "unmarshal config")
	}
	cfg.Buffer.Mode = strings.ToLower(strings.TrimSpace(cfg.Buffer.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Set overrides a single key, e.g. from a command line flag. Overrides win
// over the file and the environment.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// setDefaults registers every key so AutomaticEnv can resolve it
func (l *Loader) setDefaults() {
	d := Default()

	l.v.SetDefault("buffer.capacity", d.Buffer.Capacity)
	l.v.SetDefault("buffer.mode", d.Buffer.Mode)

	l.v.SetDefault("workload.data_size", d.Workload.DataSize)
	l.v.SetDefault("workload.seed", d.Workload.Seed)
	l.v.SetDefault("workload.runs", d.Workload.Runs)
	l.v.SetDefault("workload.produce.min", d.Workload.Produce.Min)
	l.v.SetDefault("workload.produce.max", d.Workload.Produce.Max)
	l.v.SetDefault("workload.consume.min", d.Workload.Consume.Min)
	l.v.SetDefault("workload.consume.max", d.Workload.Consume.Max)
	l.v.SetDefault("workload.rate", d.Workload.Rate)
	l.v.SetDefault("workload.check", d.Workload.Check)

	l.v.SetDefault("log.level", d.Log.Level)
	l.v.SetDefault("log.format", d.Log.Format)

	l.v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	l.v.SetDefault("metrics.port", d.Metrics.Port)
	l.v.SetDefault("metrics.path", d.Metrics.Path)
}
