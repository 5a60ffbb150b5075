package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/assistant-tools/internal/browser"
	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/server"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(ctx context.Context, url string, wait time.Duration) (*browser.Page, error) {
	return &browser.Page{URL: url, OriginalURL: url}, nil
}

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nopFetcher{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc := newServerContext(t)

	called := false
	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	})

	result, err := wrapped(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "success", ResultText(result))
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc := newServerContext(t)
	expectedErr := errors.New("test error")

	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	})

	_, err := wrapped(context.Background(), request(nil))
	assert.ErrorIs(t, err, expectedErr)
}

func TestInstrumentedToolHandler_WithInstrumentation(t *testing.T) {
	sc := newServerContext(t)

	m, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(m)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		instrumentation.AuditLoggingConfig{Enabled: true, IncludeTargets: true},
	))

	wrapped := InstrumentedToolHandler("fetch_url", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Error: Timeout while loading https://slow.example"), nil
	})

	result, err := wrapped(context.Background(), request(map[string]any{"url": "https://slow.example/a?token=x"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	out := buf.String()
	assert.Contains(t, out, `"msg":"tool_failed"`)
	assert.Contains(t, out, `"tool":"fetch_url"`)
	assert.Contains(t, out, `"target":"https://slow.example/a"`)
	assert.Contains(t, out, "Timeout while loading")
	assert.NotContains(t, out, "token=x")
}

func TestInstrumentedToolHandler_AuditSuccess(t *testing.T) {
	sc := newServerContext(t)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	wrapped := InstrumentedToolHandler("contacts_fetch", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("[]"), nil
	})

	_, err := wrapped(context.Background(), request(map[string]any{"addressbook": "Personal"}))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"tool_executed"`)
	assert.NotContains(t, out, "Personal")
}
