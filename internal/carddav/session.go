package carddav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/carddav"

	"github.com/teemow/assistant-tools/internal/credentials"
	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/logging"
)

// FastmailURL is the CardDAV home for a Fastmail user; %s is the username.
const FastmailURL = "https://carddav.fastmail.com/dav/addressbooks/user/%s/"

// ErrAddressBookNotFound is returned when a requested address book does not exist.
var ErrAddressBookNotFound = errors.New("address book not found")

const requestTimeout = 30 * time.Second

// Client is the part of *carddav.Client a Session uses.
type Client interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindAddressBookHomeSet(ctx context.Context, principal string) (string, error)
	FindAddressBooks(ctx context.Context, addressBookHomeSet string) ([]carddav.AddressBook, error)
	QueryAddressBook(ctx context.Context, addressBook string, query *carddav.AddressBookQuery) ([]carddav.AddressObject, error)
}

// AddressBook is an address book collection on the server.
type AddressBook struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Session talks to one CardDAV account. The client and the address book
// list are created on first use. A Session is safe for concurrent use.
type Session struct {
	creds    credentials.Credentials
	endpoint string
	logger   logging.Logger
	metrics  *instrumentation.Metrics

	mu     sync.Mutex
	client Client
	books  []AddressBook
}

// Option configures a Session.
type Option func(*Session)

// WithEndpoint overrides the Fastmail CardDAV URL.
func WithEndpoint(url string) Option {
	return func(s *Session) {
		if url != "" {
			s.endpoint = url
		}
	}
}

// WithLogger sets the logger for warnings about skipped address books.
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

// NewSession creates a session for creds without touching the network.
func NewSession(creds credentials.Credentials, opts ...Option) *Session {
	s := &Session{
		creds:    creds,
		endpoint: fmt.Sprintf(FastmailURL, creds.Username),
		logger:   logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) connect() (Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: requestTimeout}, s.creds.Username, s.creds.Password)
	client, err := carddav.NewClient(httpClient, s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create CardDAV client: %w", err)
	}
	s.client = client
	return client, nil
}

// AddressBooks lists the address books in server order. Display names fall
// back to the collection path.
func (s *Session) AddressBooks(ctx context.Context) ([]AddressBook, error) {
	_, books, err := s.discover(ctx)
	return books, err
}

func (s *Session) discover(ctx context.Context) (Client, []AddressBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.connect()
	if err != nil {
		return nil, nil, err
	}
	if s.books != nil {
		return client, s.books, nil
	}

	ctx, op := instrumentation.StartRemoteOp(ctx, s.metrics, instrumentation.ServiceCardDAV, instrumentation.OperationDiscover, "")
	found, err := findAddressBooks(ctx, client)
	op.End(ctx, err)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list address books: %w", err)
	}

	books := make([]AddressBook, 0, len(found))
	for _, ab := range found {
		name := ab.Name
		if name == "" {
			name = ab.Path
		}
		books = append(books, AddressBook{Name: name, Path: ab.Path})
	}
	s.books = books
	s.logger.Debug("discovered address books", logging.UserHash(s.creds.Username), logging.Count(len(books)))
	return client, books, nil
}

func findAddressBooks(ctx context.Context, client Client) ([]carddav.AddressBook, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindAddressBookHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find address book home set: %w", err)
	}
	return client.FindAddressBooks(ctx, homeSet)
}

// FetchContacts runs an addressbook-query against one book. A non-empty
// search restricts results to cards whose FN contains it, case-insensitively.
func (s *Session) FetchContacts(ctx context.Context, book AddressBook, search string) ([]Contact, error) {
	client, _, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	ctx, op := instrumentation.StartRemoteOp(ctx, s.metrics, instrumentation.ServiceCardDAV, instrumentation.OperationQuery, book.Name)
	objects, err := client.QueryAddressBook(ctx, book.Path, contactQuery(search))
	op.End(ctx, err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts from %s: %w", book.Name, err)
	}

	contacts, skips := cardsToContacts(objects, book.Name)
	if !skips.Empty() {
		s.logger.Debug("skipped contacts", logging.Account(book.Name), "reasons", skips.Reasons, logging.Err(skips.Err))
	}
	return contacts, nil
}

func contactQuery(search string) *carddav.AddressBookQuery {
	query := &carddav.AddressBookQuery{
		DataRequest: carddav.AddressDataRequest{AllProp: true},
	}
	if search != "" {
		query.PropFilters = []carddav.PropFilter{{
			Name: "FN",
			TextMatches: []carddav.TextMatch{{
				Text:      search,
				MatchType: carddav.MatchContains,
			}},
		}}
	}
	return query
}
