// Package crawler fetches a web page and reduces it to plain text suitable
// for feed ingestion. Scripts, styles and markup are stripped; whitespace is
// collapsed.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Page is the extracted content of one fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Crawler fetches pages over HTTP.
type Crawler struct {
	client *http.Client
}

// New creates a Crawler with the given per-request timeout.
func New(timeout time.Duration) *Crawler {
	return &Crawler{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the URL and extracts its title and visible text.
func (c *Crawler) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "sarathi-crawler/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", url, err)
	}
	title, text := extract(doc)
	return &Page{URL: url, Title: title, Text: text}, nil
}

// extract walks the parsed tree collecting the document title and the
// visible text, skipping script and style subtrees.
func extract(doc *html.Node) (title, text string) {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return title, strings.Join(parts, " ")
}
