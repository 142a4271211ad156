package score

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/chemsource/supplier-cli/internal/resilience"
	"github.com/chemsource/supplier-cli/pkg/cohere"
	"github.com/chemsource/supplier-cli/pkg/jina"
)

// Reranker scores each document's semantic relevance to a query in [0, 1],
// index-aligned with the input.
type Reranker interface {
	Scores(ctx context.Context, query string, documents []string) ([]float64, error)
}

// CohereReranker adapts the Cohere rerank API.
type CohereReranker struct {
	client cohere.Client
}

// NewCohereReranker creates a Reranker backed by Cohere.
func NewCohereReranker(client cohere.Client) *CohereReranker {
	return &CohereReranker{client: client}
}

func (r *CohereReranker) Scores(ctx context.Context, query string, documents []string) ([]float64, error) {
	resp, err := r.client.Rerank(ctx, query, documents)
	if err != nil {
		return nil, err
	}
	return alignScores(len(documents), resp.Results, func(res cohere.RerankResult) (int, float64) {
		return res.Index, res.RelevanceScore
	})
}

// JinaReranker adapts the Jina rerank API.
type JinaReranker struct {
	client jina.Client
}

// NewJinaReranker creates a Reranker backed by Jina.
func NewJinaReranker(client jina.Client) *JinaReranker {
	return &JinaReranker{client: client}
}

func (r *JinaReranker) Scores(ctx context.Context, query string, documents []string) ([]float64, error) {
	resp, err := r.client.Rerank(ctx, query, documents)
	if err != nil {
		return nil, err
	}
	return alignScores(len(documents), resp.Results, func(res jina.RerankResult) (int, float64) {
		return res.Index, res.RelevanceScore
	})
}

// alignScores maps index-keyed rerank results back onto input positions.
// Missing positions stay at the neutral score.
func alignScores[T any](n int, results []T, unpack func(T) (int, float64)) ([]float64, error) {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = NeutralRelevance
	}
	for _, res := range results {
		idx, val := unpack(res)
		if idx < 0 || idx >= n {
			return nil, eris.Errorf("score: rerank result index %d out of range", idx)
		}
		scores[idx] = val
	}
	return scores, nil
}

// GuardedReranker wraps a Reranker with a circuit breaker so a degraded
// rerank provider cannot stall the pipeline.
type GuardedReranker struct {
	inner   Reranker
	breaker *resilience.CircuitBreaker
}

// NewGuardedReranker wraps inner with the given breaker.
func NewGuardedReranker(inner Reranker, breaker *resilience.CircuitBreaker) *GuardedReranker {
	return &GuardedReranker{inner: inner, breaker: breaker}
}

func (g *GuardedReranker) Scores(ctx context.Context, query string, documents []string) ([]float64, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) ([]float64, error) {
		return g.inner.Scores(ctx, query, documents)
	})
}
