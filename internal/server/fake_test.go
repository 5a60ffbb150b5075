package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teemow/assistant-tools/internal/browser"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(ctx context.Context, url string, wait time.Duration) (*browser.Page, error) {
	return &browser.Page{HTML: "<html></html>", URL: url, OriginalURL: url}, nil
}

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), nopFetcher{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
