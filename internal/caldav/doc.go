// Package caldav fetches events from Fastmail calendars over CalDAV.
//
// A Session holds the authenticated client and the discovered calendar list
// for the life of a process. Calendars are addressed by display name or by
// a short alias loaded from calendars.yaml:
//
//	personal: Calendar
//	birthdays: Birthdays
//
// Events come back flattened to Event values, sorted by start time.
// Recurring events are expanded by the server.
package caldav
