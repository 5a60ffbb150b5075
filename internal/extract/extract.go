package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Article is the extracted main content of a page.
type Article struct {
	Content     string `json:"content"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ExtractedPage is an Article together with the URL it was loaded from and
// the URL the browser ended up on.
type ExtractedPage struct {
	Article
	URL         string `json:"url"`
	OriginalURL string `json:"original_url"`
}

// Elements dropped when the whole body is converted.
const boilerplate = "script, style, noscript, template, nav, header, footer, aside, form, iframe, svg"

// Extract parses html loaded from pageURL.
func Extract(html, pageURL string) (*Article, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var content string
	a := &Article{}
	if parsed, err := readability.FromReader(strings.NewReader(html), u); err == nil {
		content = parsed.Content
		a.Title = strings.TrimSpace(parsed.Title)
		a.Author = strings.TrimSpace(parsed.Byline)
		a.Description = strings.TrimSpace(parsed.Excerpt)
	}
	if strings.TrimSpace(content) == "" {
		body := doc.Find("body").Clone()
		body.Find(boilerplate).Remove()
		content, _ = body.Html()
	}

	text, err := ToMarkdown(content, u.Host)
	if err != nil {
		return nil, err
	}
	a.Content = text

	if a.Title == "" {
		a.Title = firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			metaContent(doc, `meta[name="twitter:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		)
	}
	if a.Author == "" {
		a.Author = firstNonEmpty(
			metaContent(doc, `meta[name="author"]`),
			metaContent(doc, `meta[property="article:author"]`),
		)
	}
	if desc := firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
	); desc != "" {
		a.Description = desc
	}
	a.Date = publishedDate(doc)

	return a, nil
}

// ToMarkdown converts an HTML fragment to GitHub flavored Markdown. Links and
// tables are kept, images are dropped. Relative links resolve against the
// host in domain.
func ToMarkdown(html, domain string) (string, error) {
	conv := md.NewConverter(domain, true, nil)
	conv.Use(plugin.GitHubFlavored())
	// Remove only covers tags without a rule; img has a built-in one.
	conv.AddRules(md.Rule{
		Filter: []string{"img", "picture"},
		Replacement: func(string, *goquery.Selection, *md.Options) *string {
			return md.String("")
		},
	})

	out, err := conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func publishedDate(doc *goquery.Document) string {
	raw := firstNonEmpty(
		metaContent(doc, `meta[property="article:published_time"]`),
		metaContent(doc, `meta[name="date"]`),
		metaContent(doc, `meta[itemprop="datePublished"]`),
		metaContent(doc, `meta[name="pubdate"]`),
	)
	if raw == "" {
		if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			raw = strings.TrimSpace(v)
		}
	}
	return normalizeDate(raw)
}

// normalizeDate reduces timestamps to their calendar date. Values that do not
// start with a date are returned unchanged.
func normalizeDate(raw string) string {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(time.DateOnly)
	}
	if len(raw) >= 10 {
		if _, err := time.Parse(time.DateOnly, raw[:10]); err == nil {
			return raw[:10]
		}
	}
	return raw
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
