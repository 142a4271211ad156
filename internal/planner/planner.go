package planner

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/pkg/serpapi"
)

// queryTemplates target high-signal supplier directories and marketplaces.
// {name} and {cas} are substituted with the chemical name and CAS number.
var queryTemplates = []string{
	`"{name}" "{cas}" supplier`,
	`"{name}" "{cas}" SDS`,
	`"{cas}" catalog`,
	`"{cas}" site:buyersguidechem.com`,
	`"{cas}" site:chemondis.com`,
	`"{cas}" site:thomasnet.com`,
	`"{cas}" site:chemspider.com vendor`,
	`"{name}" CAS "{cas}" buy OR purchase`,
}

// Planner expands a chemical query into search-engine queries and gathers
// candidate URLs from the results.
type Planner struct {
	search        serpapi.Client
	limiter       *rate.Limiter
	concurrency   int
	pages         int
	maxCandidates int
}

// Option configures the Planner.
type Option func(*Planner)

// WithConcurrency bounds concurrent search requests.
func WithConcurrency(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithPages sets how many result pages to fetch per query variant.
func WithPages(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.pages = n
		}
	}
}

// WithMaxCandidates caps the merged candidate list.
func WithMaxCandidates(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxCandidates = n
		}
	}
}

// WithRateLimit sets the search request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(p *Planner) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a Planner backed by a search client.
func New(search serpapi.Client, opts ...Option) *Planner {
	p := &Planner{
		search:        search,
		limiter:       rate.NewLimiter(2, 1),
		concurrency:   4,
		pages:         2,
		maxCandidates: 40,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Queries returns the expanded query strings for a chemical, in template
// order. Exposed so callers can show the plan without executing it.
func (p *Planner) Queries(q model.ChemicalQuery) []string {
	out := make([]string, 0, len(queryTemplates))
	for _, tpl := range queryTemplates {
		expanded := strings.ReplaceAll(tpl, "{name}", q.Name)
		expanded = strings.ReplaceAll(expanded, "{cas}", q.CAS)
		out = append(out, expanded)
	}
	return out
}

// Plan runs every query variant against the search engine and merges the
// results into a deduplicated candidate list.
//
// The merge is deterministic regardless of response arrival order: results
// are ordered by template index, then page, then rank within the page. A URL
// keeps its first-seen slot. A failed variant contributes nothing; the plan
// only fails when the context is canceled.
func (p *Planner) Plan(ctx context.Context, query model.ChemicalQuery) ([]model.Candidate, error) {
	variants := p.Queries(query)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	// Indexed by (variant, page) so the merge order is fixed no matter
	// which responses arrive first.
	results := make([][]serpapi.OrganicResult, len(variants)*p.pages)
	for vi, variant := range variants {
		for page := 0; page < p.pages; page++ {
			idx := vi*p.pages + page
			start := page * 10
			q := variant
			g.Go(func() error {
				if err := p.limiter.Wait(gctx); err != nil {
					return err
				}
				resp, err := p.search.Search(gctx, q, serpapi.WithStart(start), serpapi.WithNum(10))
				if err != nil {
					zap.L().Warn("planner: search variant failed",
						zap.String("query", q),
						zap.Int("start", start),
						zap.Error(err),
					)
					return nil
				}
				results[idx] = resp.OrganicResults
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var candidates []model.Candidate
	for idx, page := range results {
		variant := variants[idx/p.pages]
		for _, item := range page {
			if item.Link == "" {
				continue
			}
			if _, ok := seen[item.Link]; ok {
				continue
			}
			seen[item.Link] = struct{}{}
			candidates = append(candidates, model.Candidate{
				URL:      item.Link,
				Title:    item.Title,
				Snippet:  item.Snippet,
				Query:    variant,
				Position: item.Position,
			})
			if len(candidates) >= p.maxCandidates {
				return candidates, nil
			}
		}
	}

	zap.L().Info("planner: plan complete",
		zap.String("chemical", query.Name),
		zap.String("cas", query.CAS),
		zap.Int("variants", len(variants)),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}
