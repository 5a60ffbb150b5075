package browser_tools

import (
	"strings"
	"unicode/utf8"

	"github.com/teemow/assistant-tools/internal/extract"
)

const (
	// digestContentLimit caps each page's content in a fetch_urls digest, in
	// characters.
	digestContentLimit = 2000

	noContent = "*No content could be extracted*"
	truncated = "...\n\n*[Content truncated]*"
)

// formatPage renders a fetch_url result.
func formatPage(p *extract.ExtractedPage) string {
	var parts []string

	if p.Title != "" {
		parts = append(parts, "# "+p.Title)
	}

	var meta []string
	if p.Author != "" {
		meta = append(meta, "**Author:** "+p.Author)
	}
	if p.Date != "" {
		meta = append(meta, "**Date:** "+p.Date)
	}
	if p.URL != p.OriginalURL {
		meta = append(meta, "**Final URL:** "+p.URL)
	}
	if len(meta) > 0 {
		parts = append(parts, strings.Join(meta, "\n"))
	}

	if p.Description != "" {
		parts = append(parts, "*"+p.Description+"*")
	}

	parts = append(parts, "---")
	if p.Content != "" {
		parts = append(parts, p.Content)
	} else {
		parts = append(parts, noContent)
	}

	return strings.Join(parts, "\n\n")
}

// digestEntry is one URL's outcome in a fetch_urls call.
type digestEntry struct {
	URL  string
	Page *extract.ExtractedPage
	Err  error
}

// formatDigest renders a fetch_urls result. Entries appear in the given
// order.
func formatDigest(entries []digestEntry) string {
	var parts []string

	for _, e := range entries {
		parts = append(parts, "## "+e.URL, "")

		if e.Err != nil {
			parts = append(parts, "*Error: "+e.Err.Error()+"*")
		} else {
			if e.Page.Title != "" {
				parts = append(parts, "**"+e.Page.Title+"**")
			}
			if e.Page.Author != "" {
				parts = append(parts, "Author: "+e.Page.Author)
			}
			if e.Page.Content != "" {
				parts = append(parts, truncate(e.Page.Content, digestContentLimit))
			} else {
				parts = append(parts, noContent)
			}
		}

		parts = append(parts, "\n---\n")
	}

	return strings.Join(parts, "\n")
}

// truncate cuts s to limit characters and appends the truncation marker.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + truncated
}
