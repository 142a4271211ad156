// Package render fetches and renders web pages, returning their visible text
// and outbound links. Renderers are tried in priority order: a headless
// browser for JavaScript-heavy pages, the Firecrawl API as a hosted fallback,
// and a plain HTTP fetch as the free last resort.
package render

import (
	"context"
	"time"
)

// Link is an outbound link discovered on a rendered page.
type Link struct {
	URL    string `json:"url"`
	Anchor string `json:"anchor,omitempty"`
}

// Page holds a rendered page's content.
type Page struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Links  []Link `json:"links,omitempty"`
	Source string `json:"source"` // renderer that produced this page
}

// Renderer fetches a single URL and returns its rendered content.
type Renderer interface {
	Render(ctx context.Context, url string, timeout time.Duration) (*Page, error)
	Name() string
	Supports(url string) bool
}
