package caldav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/teemow/assistant-tools/internal/credentials"
	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/logging"
)

// FastmailURL is the CalDAV home for a Fastmail user; %s is the username.
const FastmailURL = "https://caldav.fastmail.com/dav/calendars/user/%s/"

// DefaultCalendars are fetched when no calendar is requested.
var DefaultCalendars = []string{"work", "personal"}

// ErrCalendarNotFound is returned for a name that matches no calendar.
var ErrCalendarNotFound = errors.New("calendar not found")

const requestTimeout = 30 * time.Second

// Client is the part of *caldav.Client a Session uses.
type Client interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindCalendarHomeSet(ctx context.Context, principal string) (string, error)
	FindCalendars(ctx context.Context, calendarHomeSet string) ([]caldav.Calendar, error)
	QueryCalendar(ctx context.Context, calendar string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error)
}

// Session talks to one CalDAV account. The client and the calendar list are
// created on first use and reused for the life of the session. A Session is
// safe for concurrent use.
type Session struct {
	creds    credentials.Credentials
	endpoint string
	aliases  Aliases
	loc      *time.Location
	logger   logging.Logger
	metrics  *instrumentation.Metrics

	mu        sync.Mutex
	client    Client
	calendars map[string]caldav.Calendar
}

// Option configures a Session.
type Option func(*Session)

// WithEndpoint overrides the Fastmail CalDAV URL.
func WithEndpoint(url string) Option {
	return func(s *Session) {
		if url != "" {
			s.endpoint = url
		}
	}
}

// WithAliases sets the alias table used to resolve calendar names.
func WithAliases(a Aliases) Option {
	return func(s *Session) { s.aliases = a }
}

// WithLocation sets the zone used for floating times and all-day dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

// WithLogger sets the logger for warnings about skipped calendars.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records remote operation metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithClient injects a ready client instead of dialing the endpoint.
func WithClient(c Client) Option {
	return func(s *Session) { s.client = c }
}

// NewSession creates a session for creds. No network traffic happens until
// the first call that needs it.
func NewSession(creds credentials.Credentials, opts ...Option) *Session {
	s := &Session{
		creds:    creds,
		endpoint: fmt.Sprintf(FastmailURL, creds.Username),
		aliases:  DefaultAliases(),
		loc:      time.Local,
		logger:   logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aliases returns the alias table of the session.
func (s *Session) Aliases() Aliases {
	return s.aliases
}

func (s *Session) connect() (Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: requestTimeout}, s.creds.Username, s.creds.Password)
	client, err := caldav.NewClient(httpClient, s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}
	s.client = client
	return client, nil
}

// discover returns the calendars keyed by display name, querying the server
// only the first time it succeeds.
func (s *Session) discover(ctx context.Context) (Client, map[string]caldav.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.connect()
	if err != nil {
		return nil, nil, err
	}
	if s.calendars != nil {
		return client, s.calendars, nil
	}

	ctx, op := instrumentation.StartRemoteOp(ctx, s.metrics, instrumentation.ServiceCalDAV, instrumentation.OperationDiscover, "")
	cals, err := findCalendars(ctx, client)
	op.End(ctx, err)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[string]caldav.Calendar, len(cals))
	for _, cal := range cals {
		name := cal.Name
		if name == "" {
			name = cal.Path
		}
		byName[name] = cal
	}
	s.calendars = byName
	s.logger.Debug("discovered calendars", logging.UserHash(s.creds.Username), logging.Count(len(byName)))
	return client, byName, nil
}

func findCalendars(ctx context.Context, client Client) ([]caldav.Calendar, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}
	return cals, nil
}

// CalendarNames returns the display names of all calendars, sorted.
func (s *Session) CalendarNames(ctx context.Context) ([]string, error) {
	_, cals, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}
	return sortedNames(cals), nil
}

// CalendarInfo is a calendar's display name and the alias pointing at it.
type CalendarInfo struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// ListCalendars returns every calendar with its alias, sorted by name.
func (s *Session) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	names, err := s.CalendarNames(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]CalendarInfo, 0, len(names))
	for _, name := range names {
		alias, _ := s.aliases.AliasFor(name)
		infos = append(infos, CalendarInfo{Name: name, Alias: alias})
	}
	return infos, nil
}

// Selection returns the calendar names to fetch: every calendar when all
// is set, DefaultCalendars when names is empty, otherwise names.
func (s *Session) Selection(ctx context.Context, names []string, all bool) ([]string, error) {
	switch {
	case all:
		return s.CalendarNames(ctx)
	case len(names) == 0:
		return append([]string(nil), DefaultCalendars...), nil
	default:
		return names, nil
	}
}

// lookup resolves name through the aliases and finds its calendar.
func lookup(cals map[string]caldav.Calendar, aliases Aliases, name string) (caldav.Calendar, error) {
	actual := aliases.Resolve(name)
	cal, ok := cals[actual]
	if !ok {
		return caldav.Calendar{}, fmt.Errorf("%w: '%s' (%s)", ErrCalendarNotFound, name, actual)
	}
	return cal, nil
}

func sortedNames(cals map[string]caldav.Calendar) []string {
	names := make([]string, 0, len(cals))
	for name := range cals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
