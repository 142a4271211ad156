package render

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PageCache stores rendered pages for reuse across runs.
type PageCache interface {
	GetCachedPage(ctx context.Context, pageURL string) (*Page, error)
	SetCachedPage(ctx context.Context, page *Page, ttl time.Duration) error
}

// CachedRenderer serves pages from a cache before falling back to the
// wrapped renderer. Cache errors are logged and treated as misses.
type CachedRenderer struct {
	inner Renderer
	cache PageCache
	ttl   time.Duration
}

// NewCachedRenderer wraps inner with a page cache.
func NewCachedRenderer(inner Renderer, cache PageCache, ttl time.Duration) *CachedRenderer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedRenderer{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedRenderer) Name() string             { return "cached(" + c.inner.Name() + ")" }
func (c *CachedRenderer) Supports(url string) bool { return c.inner.Supports(url) }

func (c *CachedRenderer) Render(ctx context.Context, targetURL string, timeout time.Duration) (*Page, error) {
	if page, err := c.cache.GetCachedPage(ctx, targetURL); err != nil {
		zap.L().Debug("render: cache lookup failed", zap.String("url", targetURL), zap.Error(err))
	} else if page != nil {
		return page, nil
	}

	page, err := c.inner.Render(ctx, targetURL, timeout)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetCachedPage(ctx, page, c.ttl); err != nil {
		zap.L().Debug("render: cache store failed", zap.String("url", targetURL), zap.Error(err))
	}
	return page, nil
}
