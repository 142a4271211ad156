package render

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/chemsource/supplier-cli/pkg/firecrawl"
)

// FirecrawlRenderer renders pages through the Firecrawl API. Hosted fallback
// for hosts where local Chrome is unavailable or blocked.
type FirecrawlRenderer struct {
	client firecrawl.Client
}

// NewFirecrawlRenderer creates a FirecrawlRenderer.
func NewFirecrawlRenderer(client firecrawl.Client) *FirecrawlRenderer {
	return &FirecrawlRenderer{client: client}
}

func (f *FirecrawlRenderer) Name() string           { return "firecrawl" }
func (f *FirecrawlRenderer) Supports(_ string) bool { return true }

// Render scrapes a URL via Firecrawl, returning markdown text and links.
// Firecrawl's links format carries no anchor text.
func (f *FirecrawlRenderer) Render(ctx context.Context, targetURL string, timeout time.Duration) (*Page, error) {
	req := firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{"markdown", "links"},
	}
	if timeout > 0 {
		req.Timeout = int(timeout / time.Millisecond)
	}

	resp, err := f.client.Scrape(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "firecrawl: render %s", targetURL)
	}

	if resp.Data.Markdown == "" {
		return nil, eris.Errorf("firecrawl: empty content for %s", targetURL)
	}

	links := make([]Link, 0, len(resp.Data.Links))
	for _, u := range resp.Data.Links {
		links = append(links, Link{URL: u})
	}

	return &Page{
		URL:    targetURL,
		Title:  resp.Data.Metadata.Title,
		Text:   resp.Data.Markdown,
		Links:  links,
		Source: f.Name(),
	}, nil
}
