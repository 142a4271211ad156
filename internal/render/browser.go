package render

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// BrowserRenderer renders pages in headless Chrome via chromedp, executing
// page scripts so dynamically rendered catalogs are visible. Requires
// Chrome/Chromium on the host.
type BrowserRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewBrowserRenderer starts a shared Chrome allocator. The allocator is a
// process-scoped resource: construct once at startup and pass by reference.
func NewBrowserRenderer(ctx context.Context) *BrowserRenderer {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	return &BrowserRenderer{allocCtx: allocCtx, allocCancel: cancel}
}

// Close shuts down the Chrome allocator.
func (b *BrowserRenderer) Close() {
	b.allocCancel()
}

func (b *BrowserRenderer) Name() string           { return "browser" }
func (b *BrowserRenderer) Supports(_ string) bool { return true }

// Render navigates to a URL in a fresh tab, waits for the DOM, and returns
// the rendered HTML parsed into text and links.
func (b *BrowserRenderer) Render(ctx context.Context, targetURL string, timeout time.Duration) (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	if timeout > 0 {
		tabCtx, cancel = context.WithTimeout(tabCtx, timeout)
		defer cancel()
	}

	// Propagate cancellation from the caller's context.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to settle.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "browser: render %s", targetURL)
	}

	page, err := ParseHTML(targetURL, []byte(html))
	if err != nil {
		return nil, err
	}
	page.Source = b.Name()
	return page, nil
}
