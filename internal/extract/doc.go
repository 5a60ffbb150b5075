// Package extract turns rendered HTML into Markdown article text plus
// page metadata.
//
// The main content comes from go-readability. When readability cannot find
// an article the whole body is converted instead. Metadata the article
// parser does not provide (author, publication date, description) falls back
// to the page's <meta>, <title> and <time> elements.
package extract
