// Package instrumentation provides OpenTelemetry metrics and tracing for
// assistant-tools.
//
// # Metrics
//
// HTTP (streamable-http transport only):
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Remote operations (CalDAV, CardDAV, headless browser):
//   - remote_operations_total: Counter by service, operation and status
//   - remote_operation_duration_seconds: Histogram of remote operation durations
//   - page_fetches_total: Counter of page fetches by result (success, timeout, error)
//
// MCP tools:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and for remote calls
// (<service>.<operation>, e.g. caldav.query or browser.navigate).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: assistant-tools)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_TARGETS: tool audit log
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	ctx, op := instrumentation.StartRemoteOp(ctx, provider.Metrics(),
//		instrumentation.ServiceCalDAV, instrumentation.OperationQuery, "Work")
//	objs, err := client.QueryCalendar(ctx, path, query)
//	op.End(ctx, err)
package instrumentation
