// Package resources provides MCP resources exposing read-only account data:
// the calendar alias map, the calendar list and the address book list.
// Resources are registered only for the sessions configured in the server
// context.
package resources
