// Package browser loads pages in headless Chrome.
//
// Each fetch starts its own browser process through chromedp, applies a
// desktop fingerprint (user agent, viewport, locale, timezone, request
// headers and an init script hiding automation markers), navigates, waits
// for dynamic content, dismisses common consent overlays and returns the
// rendered HTML along with the final URL. The process is torn down on every
// exit path.
package browser
