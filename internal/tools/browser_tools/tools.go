package browser_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/assistant-tools/internal/browser"
	"github.com/teemow/assistant-tools/internal/extract"
	"github.com/teemow/assistant-tools/internal/logging"
	"github.com/teemow/assistant-tools/internal/server"
	"github.com/teemow/assistant-tools/internal/tools/batch"
	"github.com/teemow/assistant-tools/internal/tools/common"
)

const waitDescription = "Seconds to wait for dynamic content (default: 2.0)"

// RegisterBrowserTools registers fetch_url and fetch_urls with the MCP server
func RegisterBrowserTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	fetchURLTool := mcp.NewTool("fetch_url",
		mcp.WithDescription("Fetch a web page using a headless browser and extract its content. "+
			"Use this for URLs that block normal HTTP requests (e.g., Medium, paywalled sites, JS-heavy pages). "+
			"Returns article text in markdown format along with metadata (title, author, date)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch"),
		),
		mcp.WithNumber("wait_seconds",
			mcp.Description(waitDescription),
			mcp.DefaultNumber(browser.DefaultWait.Seconds()),
		),
	)
	s.AddTool(fetchURLTool, common.InstrumentedToolHandler("fetch_url", sc, fetchURLHandler(sc)))

	fetchURLsTool := mcp.NewTool("fetch_urls",
		mcp.WithDescription("Fetch multiple web pages in parallel using a headless browser. "+
			"More efficient than calling fetch_url multiple times."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to fetch"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("wait_seconds",
			mcp.Description(waitDescription),
			mcp.DefaultNumber(browser.DefaultWait.Seconds()),
		),
	)
	s.AddTool(fetchURLsTool, common.InstrumentedToolHandler("fetch_urls", sc, fetchURLsHandler(sc)))

	return nil
}

func fetchURLHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		url := common.StringArg(args, "url")
		if url == "" {
			return mcp.NewToolResultError("Error: URL is required"), nil
		}
		wait, err := waitArg(args)
		if err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		sc.Logger().Info("Fetching URL", logging.KeyURL, logging.SanitizeURL(url))
		page, err := fetchPage(ctx, sc, url, wait)
		if err != nil {
			sc.Logger().Warn("fetch failed", logging.KeyURL, logging.SanitizeURL(url), logging.KeyError, err)
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		return mcp.NewToolResultText(formatPage(page)), nil
	}
}

func fetchURLsHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		urls, err := batch.ParseStringOrArray(args["urls"], "urls")
		if err != nil {
			return mcp.NewToolResultError("Error: URLs list is required"), nil
		}
		wait, err := waitArg(args)
		if err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		sc.Logger().Info("fetching urls", logging.Count(len(urls)))
		outcomes := batch.ProcessConcurrent(ctx, urls, sc.MaxConcurrency(),
			func(ctx context.Context, url string) (*extract.ExtractedPage, error) {
				return fetchPage(ctx, sc, url, wait)
			})

		entries := make([]digestEntry, len(outcomes))
		for i, o := range outcomes {
			entries[i] = digestEntry{URL: o.ID, Page: o.Value, Err: o.Err}
			if o.Err != nil {
				sc.Logger().Warn("fetch failed", logging.KeyURL, logging.SanitizeURL(o.ID), logging.Err(o.Err))
			}
		}
		sc.Logger().Info("fetched urls", logging.Count(len(outcomes)), "failed", batch.Failed(outcomes))

		return mcp.NewToolResultText(formatDigest(entries)), nil
	}
}

// fetchPage loads url and extracts its article. A page the extractor
// cannot parse yields empty content rather than an error.
func fetchPage(ctx context.Context, sc *server.ServerContext, url string, wait time.Duration) (*extract.ExtractedPage, error) {
	page, err := sc.Fetcher().Fetch(ctx, url, wait)
	if err != nil {
		return nil, err
	}

	result := &extract.ExtractedPage{URL: page.URL, OriginalURL: page.OriginalURL}
	article, err := extract.Extract(page.HTML, page.URL)
	if err != nil {
		sc.Logger().Debug("extraction failed", logging.KeyURL, logging.SanitizeURL(page.URL), logging.KeyError, err)
		return result, nil
	}
	result.Article = *article
	return result, nil
}

// waitArg reads wait_seconds, defaulting to browser.DefaultWait. Negative
// values mean no wait.
func waitArg(args map[string]interface{}) (time.Duration, error) {
	secs, ok, err := common.NumberArg(args, "wait_seconds")
	if err != nil {
		return 0, err
	}
	if !ok {
		return browser.DefaultWait, nil
	}
	if secs < 0 {
		return 0, nil
	}
	return time.Duration(secs * float64(time.Second)), nil
}
