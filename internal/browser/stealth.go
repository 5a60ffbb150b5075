package browser

import "github.com/chromedp/chromedp"

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	viewportWidth  = 1920
	viewportHeight = 1080

	locale   = "en-US"
	timezone = "America/New_York"
)

// extraHeaders are sent with every request the page makes.
var extraHeaders = map[string]any{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate, br",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// stealthScript runs before any page script and hides the usual automation
// markers.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
window.chrome = { runtime: {} };
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications' ?
		Promise.resolve({ state: Notification.permission }) :
		originalQuery(parameters)
);
`

// consentSelector is one overlay button to try after the page settles.
type consentSelector struct {
	sel string
	by  chromedp.QueryOption
}

// consentSelectors are tried in order; every visible match is clicked.
var consentSelectors = []consentSelector{
	{`//button[contains(., 'Accept')]`, chromedp.BySearch},
	{`//button[contains(., 'Got it')]`, chromedp.BySearch},
	{`//button[contains(., 'Close')]`, chromedp.BySearch},
	{`[aria-label='Close']`, chromedp.ByQuery},
}

// allocatorOptions returns the Chrome launch options. execPath overrides
// the browser binary when set.
func allocatorOptions(execPath string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
		chromedp.UserAgent(userAgent),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	return opts
}
