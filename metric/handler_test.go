package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Defaults(t *testing.T) {
	server := NewServer(0, "", NewMetricsRegistry())

	assert.Equal(t, "http://localhost:9090/metrics", server.Address())
}

func TestServer_Handler(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordElements("in", 42)

	ts := httptest.NewServer(NewServer(9191, "/metrics", registry).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bipstream_driver_elements_total")
}

func TestServer_StartWithoutRegistry(t *testing.T) {
	server := NewServer(9192, "/metrics", nil)

	err := server.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics registry not provided")
}

func TestServer_StopWhenNotRunning(t *testing.T) {
	server := NewServer(9193, "/metrics", NewMetricsRegistry())

	assert.NoError(t, server.Stop())
}
