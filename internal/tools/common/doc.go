// Package common provides shared utilities for MCP tool implementations:
// the instrumentation wrapper every tool handler is registered through and
// argument helpers used across the tool packages.
package common
