package render

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// LocalRenderer fetches HTML via net/http and parses it with goquery. It
// cannot execute page scripts, so JS-shell pages are rejected via block
// detection and fall through to the browser or Firecrawl.
type LocalRenderer struct {
	client       *http.Client
	maxBodyBytes int64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRenderer creates a LocalRenderer with sensible defaults.
func NewLocalRenderer(maxBodyBytes int64) *LocalRenderer {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 512 * 1024
	}
	return &LocalRenderer{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxBodyBytes: maxBodyBytes,
		limiters:     make(map[string]*rate.Limiter),
	}
}

func (l *LocalRenderer) Name() string           { return "local_http" }
func (l *LocalRenderer) Supports(_ string) bool { return true }

// limiterFor returns the per-host rate limiter, creating it on first use.
// Two requests per second per host keeps crawling polite.
func (l *LocalRenderer) limiterFor(targetURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(targetURL); err == nil {
		host = u.Hostname()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(2, 2)
		l.limiters[host] = lim
	}
	return lim
}

// Render fetches a URL, detects blocks, and extracts text plus outbound links.
func (l *LocalRenderer) Render(ctx context.Context, targetURL string, timeout time.Duration) (*Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := l.limiterFor(targetURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "local_http: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SupplierBot/1.0)")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	if len(body) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	page, err := ParseHTML(targetURL, body)
	if err != nil {
		return nil, err
	}
	page.Source = l.Name()
	return page, nil
}

// ParseHTML extracts title, visible text, and absolute outbound links from an
// HTML document. Shared by the local and browser renderers.
func ParseHTML(pageURL string, html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "render: parse html")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "render: parse url %s", pageURL)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	// Drop non-content blocks before text extraction.
	doc.Find("script, style, noscript").Remove()
	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		text = collapseWhitespace(doc.Text())
	}

	var links []Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
			return
		}
		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		links = append(links, Link{
			URL:    abs.String(),
			Anchor: collapseWhitespace(sel.Text()),
		})
	})

	return &Page{
		URL:   pageURL,
		Title: title,
		Text:  text,
		Links: links,
	}, nil
}

// collapseWhitespace squeezes runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
