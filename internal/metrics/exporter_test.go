package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestExporterServesMetricsAndHealth(t *testing.T) {
	e, err := NewExporter(":0", immersive.NewMetrics())
	require.NoError(t, err)

	code, body := get(t, e.Handler(), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get(t, e.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "oxyxr_sessions_active")
	assert.Contains(t, body, "oxyxr_sessions_started_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestExporterRejectsDuplicateSet(t *testing.T) {
	m := immersive.NewMetrics()
	_, err := NewExporter(":0", m, m)
	assert.Error(t, err)
}

func TestExporterRegistryIsShared(t *testing.T) {
	e, err := NewExporter(":0")
	require.NoError(t, err)
	require.NoError(t, immersive.NewMetrics().Register(e.Registry()))

	_, body := get(t, e.Handler(), "/metrics")
	assert.Contains(t, body, "oxyxr_frame_duration_seconds")
}

func TestServeStopsOnCancel(t *testing.T) {
	e, err := NewExporter("127.0.0.1:0")
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeReportsListenError(t *testing.T) {
	e, err := NewExporter("not-an-address")
	require.NoError(t, err)
	assert.Error(t, e.Serve(context.Background()))
}
