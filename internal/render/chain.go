package render

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries renderers in priority order, returning the first success.
type Chain struct {
	renderers []Renderer
}

// NewChain creates a Chain. Renderers are tried in order; the first
// successful result is returned.
func NewChain(renderers ...Renderer) *Chain {
	return &Chain{renderers: renderers}
}

func (c *Chain) Name() string           { return "chain" }
func (c *Chain) Supports(_ string) bool { return true }

// Render tries each renderer in order for a single URL.
// Returns the first successful result, or an error if all fail.
func (c *Chain) Render(ctx context.Context, targetURL string, timeout time.Duration) (*Page, error) {
	var lastErr error
	for _, r := range c.renderers {
		if !r.Supports(targetURL) {
			continue
		}
		page, err := r.Render(ctx, targetURL, timeout)
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("render: renderer failed, trying next",
				zap.String("renderer", r.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "render: all renderers failed")
	}
	return nil, eris.Errorf("render: no suitable renderer for url: %s", targetURL)
}
