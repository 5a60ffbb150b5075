// Package cmd implements the command-line interface for assistant-tools.
//
// This package provides the following commands:
//   - calendar: Fetch events from Fastmail calendars as JSON
//   - contacts: Fetch contacts from Fastmail address books as JSON
//   - serve: Start the MCP server with the headless browser tools
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Results are written to stdout; diagnostics go to stderr, and any fatal
// error ends the process with exit status 1.
package cmd
