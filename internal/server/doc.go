// Package server provides the MCP server context and the HTTP plumbing for
// the streamable-http transport.
//
// # Key Components
//
// ServerContext carries what tool handlers need: the page fetcher, the
// optional CalDAV and CardDAV sessions, the fan-out limit and the
// instrumentation recorders. It is created once per serve process.
//
// HTTPServer exposes the MCP server at /mcp together with the health
// endpoints (/healthz, /readyz, /healthz/detailed) and records request
// metrics for every request.
//
// MetricsServer serves Prometheus metrics on a dedicated port so scraping
// is kept apart from tool traffic.
package server
