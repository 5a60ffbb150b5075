package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/logging"
)

const (
	consentCheckTimeout = 500 * time.Millisecond
	consentPause        = 500 * time.Millisecond
)

// ChromeFetcher fetches pages with a fresh headless Chrome per call.
// It is safe for concurrent use; concurrent calls run separate browsers.
type ChromeFetcher struct {
	execPath   string
	navTimeout time.Duration
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

// Option configures a ChromeFetcher.
type Option func(*ChromeFetcher)

// WithExecPath sets the Chrome binary. By default chromedp searches the
// usual install locations.
func WithExecPath(path string) Option {
	return func(f *ChromeFetcher) { f.execPath = path }
}

// WithNavigationTimeout overrides NavigationTimeout.
func WithNavigationTimeout(d time.Duration) Option {
	return func(f *ChromeFetcher) { f.navTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(f *ChromeFetcher) { f.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(f *ChromeFetcher) { f.metrics = m }
}

// NewChromeFetcher creates a ChromeFetcher.
func NewChromeFetcher(opts ...Option) *ChromeFetcher {
	f := &ChromeFetcher{
		navTimeout: NavigationTimeout,
		logger:     logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch launches Chrome, loads rawURL and returns the rendered page.
// A navigation that exceeds the timeout yields a *TimeoutError.
func (f *ChromeFetcher) Fetch(ctx context.Context, rawURL string, wait time.Duration) (p *Page, err error) {
	ctx, op := instrumentation.StartRemoteOp(ctx, f.metrics,
		instrumentation.ServiceBrowser, instrumentation.OperationNavigate, hostOf(rawURL))
	defer func() {
		op.End(ctx, err)
		f.metrics.RecordPageFetch(ctx, fetchResult(err))
	}()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(f.execPath)...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	// The first Run starts the browser and must not carry the navigation
	// deadline, or the browser dies with it.
	if err := chromedp.Run(tabCtx, prepare()); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	f.logger.Debug("navigating", logging.KeyURL, logging.SanitizeURL(rawURL))
	navCtx, cancelNav := context.WithTimeout(tabCtx, f.navTimeout)
	err = chromedp.Run(navCtx, chromedp.Navigate(rawURL))
	cancelNav()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &TimeoutError{URL: rawURL}
		}
		return nil, fmt.Errorf("failed to load %s: %w", rawURL, err)
	}

	if wait > 0 {
		if err := chromedp.Run(tabCtx, chromedp.Sleep(wait)); err != nil {
			return nil, err
		}
	}
	f.dismissConsent(tabCtx)

	var html, finalURL string
	if err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	); err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	f.logger.Debug("page loaded",
		logging.KeyURL, logging.SanitizeURL(finalURL),
		"bytes", len(html),
	)
	return &Page{HTML: html, URL: finalURL, OriginalURL: rawURL}, nil
}

// prepare applies the browser fingerprint to a fresh tab.
func prepare() chromedp.Tasks {
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(extraHeaders)),
		emulation.SetTimezoneOverride(timezone),
		emulation.SetLocaleOverride().WithLocale(locale),
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
}

// dismissConsent clicks every visible consent button. Failures are ignored.
func (f *ChromeFetcher) dismissConsent(ctx context.Context) {
	for _, c := range consentSelectors {
		if !clickIfVisible(ctx, c) {
			continue
		}
		f.logger.Debug("dismissed overlay", "selector", c.sel)
		_ = chromedp.Run(ctx, chromedp.Sleep(consentPause))
	}
}

func clickIfVisible(ctx context.Context, c consentSelector) bool {
	checkCtx, cancel := context.WithTimeout(ctx, consentCheckTimeout)
	defer cancel()
	if err := chromedp.Run(checkCtx, chromedp.WaitVisible(c.sel, c.by)); err != nil {
		return false
	}

	clickCtx, cancelClick := context.WithTimeout(ctx, consentCheckTimeout)
	defer cancelClick()
	return chromedp.Run(clickCtx, chromedp.Click(c.sel, c.by, chromedp.NodeVisible)) == nil
}

func fetchResult(err error) string {
	switch {
	case err == nil:
		return instrumentation.FetchResultSuccess
	case errors.Is(err, ErrNavigationTimeout):
		return instrumentation.FetchResultTimeout
	default:
		return instrumentation.FetchResultError
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
