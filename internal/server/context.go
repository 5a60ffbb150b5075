package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/assistant-tools/internal/browser"
	"github.com/teemow/assistant-tools/internal/caldav"
	"github.com/teemow/assistant-tools/internal/carddav"
	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/logging"
)

// DefaultMaxConcurrency bounds how many pages fetch_urls loads at once.
const DefaultMaxConcurrency = 4

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx            context.Context
	cancel         context.CancelFunc
	fetcher        browser.Fetcher
	calendar       *caldav.Session
	contacts       *carddav.Session
	maxConcurrency int
	logger         logging.Logger
	metrics        *instrumentation.Metrics
	auditLogger    *instrumentation.AuditLogger
	mu             sync.RWMutex
	shutdown       bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithCalendar enables the calendar tools.
func WithCalendar(s *caldav.Session) Option {
	return func(sc *ServerContext) { sc.calendar = s }
}

// WithContacts enables the contacts tools.
func WithContacts(s *carddav.Session) Option {
	return func(sc *ServerContext) { sc.contacts = s }
}

// WithMaxConcurrency sets the fetch_urls fan-out limit. Values below 1 are
// ignored.
func WithMaxConcurrency(n int) Option {
	return func(sc *ServerContext) {
		if n > 0 {
			sc.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger used by tool handlers.
func WithLogger(l logging.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, fetcher browser.Fetcher, opts ...Option) (*ServerContext, error) {
	if fetcher == nil {
		return nil, errors.New("page fetcher is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:            shutdownCtx,
		cancel:         cancel,
		fetcher:        fetcher,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Fetcher returns the page fetcher.
func (sc *ServerContext) Fetcher() browser.Fetcher {
	return sc.fetcher
}

// Calendar returns the CalDAV session, or nil when calendar credentials are
// not configured.
func (sc *ServerContext) Calendar() *caldav.Session {
	return sc.calendar
}

// Contacts returns the CardDAV session, or nil when contacts credentials are
// not configured.
func (sc *ServerContext) Contacts() *carddav.Session {
	return sc.contacts
}

// MaxConcurrency returns the fetch_urls fan-out limit.
func (sc *ServerContext) MaxConcurrency() int {
	return sc.maxConcurrency
}

// Logger returns the logger.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
