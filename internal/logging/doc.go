// Package logging provides structured logging utilities for assistant-tools.
//
// All commands log through log/slog to stderr. Stdout is reserved for JSON
// results (calendar, contacts) and for the stdio MCP transport (serve).
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithService(slog.Default(), "caldav")
//	logger.Warn("calendar not found",
//	    logging.Account("work"),
//	    logging.Status(logging.StatusSkipped))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("discovering calendars", logging.UserHash(username))
//	logger.Info("fetching page", logging.URL(pageURL))
//
// # Security Considerations
//
//   - The Fastmail username is hashed so log lines can be correlated without exposing it
//   - App passwords are never logged; SanitizeSecret reports only their length
//   - Query strings are stripped from page URLs
package logging
