package planner

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/pkg/serpapi"
)

type mockSearch struct {
	mu      sync.Mutex
	calls   []string
	handler func(query string, start int) (*serpapi.SearchResponse, error)
}

func (m *mockSearch) Search(_ context.Context, query string, opts ...serpapi.SearchOption) (*serpapi.SearchResponse, error) {
	cfg := serpapi.ApplySearchOptions(opts...)
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("%s@%d", query, cfg.Start))
	m.mu.Unlock()
	if m.handler != nil {
		return m.handler(query, cfg.Start)
	}
	return &serpapi.SearchResponse{}, nil
}

func acetoneQuery() model.ChemicalQuery {
	return model.ChemicalQuery{Name: "Acetone", CAS: "67-64-1", Limit: 10}
}

func TestQueriesExpandTemplates(t *testing.T) {
	p := New(&mockSearch{})
	queries := p.Queries(acetoneQuery())

	require.Len(t, queries, 8)
	assert.Equal(t, `"Acetone" "67-64-1" supplier`, queries[0])
	assert.Equal(t, `"Acetone" "67-64-1" SDS`, queries[1])
	assert.Equal(t, `"67-64-1" site:buyersguidechem.com`, queries[3])
	assert.Equal(t, `"Acetone" CAS "67-64-1" buy OR purchase`, queries[7])
}

func TestPlanMergesDeterministically(t *testing.T) {
	search := &mockSearch{
		handler: func(query string, start int) (*serpapi.SearchResponse, error) {
			// Each variant/page returns one distinct URL plus a shared one.
			return &serpapi.SearchResponse{
				OrganicResults: []serpapi.OrganicResult{
					{Position: 1, Title: "shared", Link: "https://shared.example.com/p", Snippet: "s"},
					{Position: 2, Title: query, Link: fmt.Sprintf("https://x.example.com/%s/%d", query, start)},
				},
			}, nil
		},
	}

	p := New(search, WithPages(1), WithConcurrency(4), WithRateLimit(1000))
	candidates, err := p.Plan(context.Background(), acetoneQuery())
	require.NoError(t, err)

	// One shared URL plus eight distinct ones.
	require.Len(t, candidates, 9)
	assert.Equal(t, "https://shared.example.com/p", candidates[0].URL)
	assert.Equal(t, `"Acetone" "67-64-1" supplier`, candidates[0].Query,
		"shared URL keeps its first-seen variant")
	assert.Equal(t, 1, candidates[0].Position)
	assert.Contains(t, candidates[1].URL, "supplier")
}

func TestPlanSkipsFailedVariants(t *testing.T) {
	search := &mockSearch{
		handler: func(query string, start int) (*serpapi.SearchResponse, error) {
			if query == `"67-64-1" catalog` {
				return nil, eris.New("serpapi: rate limited")
			}
			return &serpapi.SearchResponse{
				OrganicResults: []serpapi.OrganicResult{
					{Position: 1, Link: fmt.Sprintf("https://x.example.com/%s", query)},
				},
			}, nil
		},
	}

	p := New(search, WithPages(1), WithRateLimit(1000))
	candidates, err := p.Plan(context.Background(), acetoneQuery())
	require.NoError(t, err, "a failing variant must not fail the plan")
	assert.Len(t, candidates, 7)
}

func TestPlanCapsCandidates(t *testing.T) {
	search := &mockSearch{
		handler: func(query string, start int) (*serpapi.SearchResponse, error) {
			results := make([]serpapi.OrganicResult, 10)
			for i := range results {
				results[i] = serpapi.OrganicResult{
					Position: i + 1,
					Link:     fmt.Sprintf("https://x.example.com/%s/%d/%d", query, start, i),
				}
			}
			return &serpapi.SearchResponse{OrganicResults: results}, nil
		},
	}

	p := New(search, WithPages(2), WithMaxCandidates(25), WithRateLimit(1000))
	candidates, err := p.Plan(context.Background(), acetoneQuery())
	require.NoError(t, err)
	assert.Len(t, candidates, 25)
}

func TestPlanPaginates(t *testing.T) {
	search := &mockSearch{}
	p := New(search, WithPages(3), WithRateLimit(1000))
	_, err := p.Plan(context.Background(), acetoneQuery())
	require.NoError(t, err)

	// 8 variants x 3 pages.
	assert.Len(t, search.calls, 24)
	assert.Contains(t, search.calls, `"Acetone" "67-64-1" supplier@0`)
	assert.Contains(t, search.calls, `"Acetone" "67-64-1" supplier@10`)
	assert.Contains(t, search.calls, `"Acetone" "67-64-1" supplier@20`)
}
