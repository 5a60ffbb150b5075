package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer_RequiresMCPServer(t *testing.T) {
	_, err := NewHTTPServer(nil, false)
	require.Error(t, err)
}

func TestHTTPServer_Routes(t *testing.T) {
	srv, err := NewHTTPServer(mcpserver.NewMCPServer("test", "0.0.0"), false)
	require.NoError(t, err)
	srv.SetHealthChecker(NewHealthChecker(newTestServerContext(t)))

	provider := createTestProvider(t)
	srv.SetMetrics(provider.Metrics())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	metrics, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `path="/healthz"`)
	assert.Contains(t, rec.Body.String(), `path="other"`)
}

func TestHTTPServer_ShutdownMarksNotReady(t *testing.T) {
	srv, err := NewHTTPServer(mcpserver.NewMCPServer("test", "0.0.0"), true)
	require.NoError(t, err)
	h := NewHealthChecker(nil)
	srv.SetHealthChecker(h)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.False(t, h.IsReady())
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/mcp", routeLabel("/mcp"))
	assert.Equal(t, "/readyz", routeLabel("/readyz"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	srv, err := NewHTTPServer(mcpserver.NewMCPServer("test", "0.0.0"), false)
	require.NoError(t, err)
	srv.SetHealthChecker(NewHealthChecker(newTestServerContext(t)))

	done := make(chan error, 1)
	go func() { done <- srv.Start("127.0.0.1:0") }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}
