package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chemsource/supplier-cli/internal/discover"
	"github.com/chemsource/supplier-cli/internal/enrich"
	"github.com/chemsource/supplier-cli/internal/planner"
	"github.com/chemsource/supplier-cli/internal/render"
	"github.com/chemsource/supplier-cli/internal/resilience"
	"github.com/chemsource/supplier-cli/internal/score"
	"github.com/chemsource/supplier-cli/internal/store"
	"github.com/chemsource/supplier-cli/internal/verify"
	"github.com/chemsource/supplier-cli/pkg/cohere"
	"github.com/chemsource/supplier-cli/pkg/firecrawl"
	"github.com/chemsource/supplier-cli/pkg/hunter"
	"github.com/chemsource/supplier-cli/pkg/jina"
	"github.com/chemsource/supplier-cli/pkg/serpapi"
)

// pipelineEnv holds the initialized clients and pipeline shared by the
// search/serve commands.
type pipelineEnv struct {
	Store    store.Store // nil when persistence is not configured
	Pipeline *discover.Pipeline

	browser *render.BrowserRenderer
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.browser != nil {
		pe.browser.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the run store when a path is configured, or returns nil.
func initStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// requireStore is initStore for commands that cannot work without one.
func requireStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("store.path is not configured (set SUPPLIER_STORE_PATH)")
	}
	return st, nil
}

// initPipeline wires every collaborator into a discovery pipeline. Callers
// should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Serp.Key == "" {
		return nil, eris.New("serp.key is required (set SUPPLIER_SERP_KEY)")
	}

	env := &pipelineEnv{}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env.Store = st

	serpClient := serpapi.NewClient(cfg.Serp.Key, serpapi.WithBaseURL(cfg.Serp.BaseURL))
	plan := planner.New(serpClient,
		planner.WithPages(cfg.Serp.Pages),
		planner.WithRateLimit(cfg.Serp.RateLimit),
		planner.WithConcurrency(cfg.Discovery.SearchConcurrency),
		planner.WithMaxCandidates(cfg.Discovery.MaxCandidates),
	)

	// Renderer chain: headless browser first for script-heavy catalogs,
	// then the hosted scraper, then plain HTTP.
	var renderers []render.Renderer
	if cfg.Render.Browser {
		env.browser = render.NewBrowserRenderer(ctx)
		renderers = append(renderers, env.browser)
	}
	if cfg.Firecrawl.Key != "" {
		fc := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		renderers = append(renderers, render.NewFirecrawlRenderer(fc))
	}
	renderers = append(renderers, render.NewLocalRenderer(int64(cfg.Render.MaxBodyBytes)))

	var renderer render.Renderer = render.NewChain(renderers...)
	if st != nil {
		renderer = render.NewCachedRenderer(renderer, st,
			time.Duration(cfg.Store.CacheTTLHours)*time.Hour)
	}

	verifier := verify.New(renderer,
		verify.WithMaxFollowLinks(cfg.Discovery.MaxFollowLinks),
		verify.WithTimeout(time.Duration(cfg.Render.PageTimeoutSecs)*time.Second),
	)

	scorer := score.New(initReranker())

	var enrichOpts []enrich.Option
	if cfg.Hunter.Key != "" {
		hc := hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))
		enrichOpts = append(enrichOpts, enrich.WithVerifier(hc))
		zap.L().Info("email verification enabled")
	}
	enricher := enrich.New(enrichOpts...)

	env.Pipeline = discover.New(plan, verifier, scorer, enricher,
		discover.WithFetchConcurrency(cfg.Discovery.FetchConcurrency),
	)
	return env, nil
}

// initReranker picks the configured rerank provider, guarded by a circuit
// breaker. Returns nil when no provider is configured; scoring then uses the
// neutral relevance for every candidate.
func initReranker() score.Reranker {
	var inner score.Reranker
	switch {
	case cfg.Cohere.Key != "":
		inner = score.NewCohereReranker(cohere.NewClient(cfg.Cohere.Key,
			cohere.WithBaseURL(cfg.Cohere.BaseURL),
			cohere.WithModel(cfg.Cohere.Model),
		))
	case cfg.Jina.Key != "":
		inner = score.NewJinaReranker(jina.NewClient(cfg.Jina.Key,
			jina.WithBaseURL(cfg.Jina.BaseURL),
			jina.WithModel(cfg.Jina.Model),
		))
	default:
		zap.L().Debug("no rerank provider configured, relevance stays neutral")
		return nil
	}

	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	return score.NewGuardedReranker(inner, breaker)
}
