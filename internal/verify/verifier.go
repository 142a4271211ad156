// Package verify fetches candidate pages and checks them for identifier
// evidence, following a bounded number of same-site document links when the
// landing page itself has no match.
package verify

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chemsource/supplier-cli/internal/casmatch"
	"github.com/chemsource/supplier-cli/internal/dedupe"
	"github.com/chemsource/supplier-cli/internal/enrich"
	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/internal/render"
)

// linkHints mark links likely to lead to evidence documents: safety data
// sheets, technical data sheets, and product catalogs.
var linkHints = []string{"sds", "tds", "safety data", "product", "catalog", "datasheet"}

// Result is the outcome of verifying one candidate URL.
type Result struct {
	Evidence model.Evidence
	Page     *render.Page // landing page, nil when the fetch failed
	Emails   []string     // addresses seen on the landing and evidence pages
	Err      error        // set when the landing page fetch failed
}

// Verifier checks candidate pages for identifier evidence.
type Verifier struct {
	renderer       render.Renderer
	maxFollowLinks int
	timeout        time.Duration
}

// Option configures the Verifier.
type Option func(*Verifier)

// WithMaxFollowLinks bounds how many hinted links are fetched per candidate.
func WithMaxFollowLinks(n int) Option {
	return func(v *Verifier) {
		if n >= 0 {
			v.maxFollowLinks = n
		}
	}
}

// WithTimeout sets the per-page render timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// New creates a Verifier on top of a page renderer.
func New(renderer render.Renderer, opts ...Option) *Verifier {
	v := &Verifier{
		renderer:       renderer,
		maxFollowLinks: 5,
		timeout:        30 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify renders a candidate URL and searches it for the identifier.
//
// The landing page is checked first; a hit there is a direct match. Otherwise
// up to maxFollowLinks same-site links whose anchor or URL suggests a
// document page are fetched one hop deep, stopping at the first hit. Links
// past the first hit are never fetched.
func (v *Verifier) Verify(ctx context.Context, candidateURL, identifier string) Result {
	page, err := v.renderer.Render(ctx, candidateURL, v.timeout)
	if err != nil {
		zap.L().Debug("verify: landing page fetch failed",
			zap.String("url", candidateURL),
			zap.Error(err),
		)
		return Result{Evidence: model.Evidence{Status: model.EvidenceFetchFailed}, Err: err}
	}

	emails := enrich.ExtractEmails(page.Text)

	if matched := casmatch.Find(page.Text, identifier); matched != "" {
		return Result{
			Evidence: model.Evidence{
				Status:      model.EvidenceDirectMatch,
				EvidenceURL: candidateURL,
				MatchedText: matched,
			},
			Page:   page,
			Emails: emails,
		}
	}

	for _, link := range v.selectLinks(candidateURL, page.Links) {
		linked, err := v.renderer.Render(ctx, link, v.timeout)
		if err != nil {
			zap.L().Debug("verify: linked page fetch failed",
				zap.String("url", link),
				zap.Error(err),
			)
			continue
		}
		if matched := casmatch.Find(linked.Text, identifier); matched != "" {
			emails = mergeEmails(emails, enrich.ExtractEmails(linked.Text))
			return Result{
				Evidence: model.Evidence{
					Status:      model.EvidenceFollowedLinkMatch,
					EvidenceURL: link,
					MatchedText: matched,
				},
				Page:   page,
				Emails: emails,
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	return Result{
		Evidence: model.Evidence{Status: model.EvidenceNoMatch},
		Page:     page,
		Emails:   emails,
	}
}

// selectLinks picks up to maxFollowLinks same-site links whose anchor text or
// URL contains a document hint, preserving page order.
func (v *Verifier) selectLinks(pageURL string, links []render.Link) []string {
	site := dedupe.RegistrableDomain(pageURL)
	seen := make(map[string]struct{})
	var out []string
	for _, link := range links {
		if len(out) >= v.maxFollowLinks {
			break
		}
		if link.URL == pageURL {
			continue
		}
		if _, ok := seen[link.URL]; ok {
			continue
		}
		if site != "" && dedupe.RegistrableDomain(link.URL) != site {
			continue
		}
		if !hinted(link) {
			continue
		}
		seen[link.URL] = struct{}{}
		out = append(out, link.URL)
	}
	return out
}

func hinted(link render.Link) bool {
	anchor := strings.ToLower(link.Anchor)
	target := strings.ToLower(link.URL)
	for _, hint := range linkHints {
		if strings.Contains(anchor, hint) || strings.Contains(target, hint) {
			return true
		}
	}
	return false
}

func mergeEmails(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, lst := range [][]string{a, b} {
		for _, e := range lst {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
