// Package dav_tools exposes the Fastmail calendar and contacts fetchers as
// MCP tools.
//
// Calendar tools:
//   - calendar_list_calendars: calendars with their aliases
//   - calendar_fetch_events: events in a date range as JSON
//
// Contacts tools:
//   - contacts_list_addressbooks: address books
//   - contacts_fetch: contacts as JSON, optionally filtered to (upcoming)
//     birthdays
//
// Each group is registered only when its session is configured in the
// server context.
package dav_tools
