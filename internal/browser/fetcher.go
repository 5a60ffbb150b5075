package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultWait is the settle delay applied after navigation when the caller
// does not choose one.
const DefaultWait = 2 * time.Second

// NavigationTimeout bounds the navigation itself. The settle delay and
// consent handling come on top of it.
const NavigationTimeout = 30 * time.Second

// ErrNavigationTimeout is returned when a page does not load within
// NavigationTimeout.
var ErrNavigationTimeout = errors.New("navigation timeout")

// TimeoutError reports which URL timed out. It matches ErrNavigationTimeout
// under errors.Is.
type TimeoutError struct {
	URL string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout while loading %s", e.URL)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrNavigationTimeout
}

// Page is a rendered page.
type Page struct {
	HTML        string
	URL         string
	OriginalURL string
}

// Fetcher loads a page and returns its rendered HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string, wait time.Duration) (*Page, error)
}
