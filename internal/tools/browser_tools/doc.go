// Package browser_tools provides the MCP tools that load web pages in a
// headless browser and return their content as Markdown.
//
// Tools:
//   - fetch_url: fetch one page and return its article text with metadata
//   - fetch_urls: fetch several pages concurrently and return a digest of
//     each, in the order the URLs were given
//
// Failures never surface as protocol errors: every tool call returns a text
// result, with "Error: ..." describing what went wrong.
package browser_tools
