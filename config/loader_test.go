package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/bipstream/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bipstream.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeConfig(t, `
buffer:
  capacity: 4096
  mode: stream
workload:
  data_size: 100000
  seed: 99
  produce:
    min: 64
    max: 2048
log:
  level: debug
  format: json
metrics:
  enabled: true
  port: 9191
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Buffer.Capacity)
	assert.Equal(t, ModeStream, cfg.Buffer.Mode)
	assert.Equal(t, 100000, cfg.Workload.DataSize)
	assert.Equal(t, int64(99), cfg.Workload.Seed)
	assert.Equal(t, 64, cfg.Workload.Produce.Min)
	assert.Equal(t, 2048, cfg.Workload.Produce.Max)
	// Not in the file, default kept
	assert.Equal(t, 500, cfg.Workload.Consume.Max)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "buffer:\n  capacity: 64\n")
	t.Setenv("BIPSTREAM_BUFFER_CAPACITY", "128")
	t.Setenv("BIPSTREAM_WORKLOAD_CONSUME_MAX", "40")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Buffer.Capacity)
	assert.Equal(t, 40, cfg.Workload.Consume.Max)
}

func TestLoader_SetOverridesEverything(t *testing.T) {
	t.Setenv("BIPSTREAM_BUFFER_CAPACITY", "128")

	l := NewLoader()
	l.Set("buffer.capacity", 32)
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Buffer.Capacity)
}

func TestLoader_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("BIP_TEST_FORMAT", "json")
	path := writeConfig(t, "log:\n  format: ${BIP_TEST_FORMAT}\n")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoader_NormalizesMode(t *testing.T) {
	path := writeConfig(t, "buffer:\n  mode: \" Stream \"\n")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeStream, cfg.Buffer.Mode)

	l := NewLoader()
	l.Set("buffer.mode", "LOCKED")
	cfg, err = l.Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeLocked, cfg.Buffer.Mode)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigNotFound)
	assert.True(t, errors.IsFatal(err))
}

func TestLoader_InvalidValues(t *testing.T) {
	path := writeConfig(t, "buffer:\n  capacity: -5\n")

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
