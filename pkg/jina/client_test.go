package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerank_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/rerank", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jina-reranker-v2-base-multilingual", body.Model)
		assert.Len(t, body.Documents, 3)
		assert.Equal(t, 3, body.TopN)

		_ = json.NewEncoder(w).Encode(RerankResponse{
			Model: body.Model,
			Results: []RerankResult{
				{Index: 2, RelevanceScore: 0.88},
				{Index: 0, RelevanceScore: 0.61},
				{Index: 1, RelevanceScore: 0.12},
			},
			Usage: Usage{TotalTokens: 42},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Rerank(context.Background(), "Eucalyptol 470-82-6", []string{"a", "b", "c"})

	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 2, resp.Results[0].Index)
	assert.InDelta(t, 0.88, resp.Results[0].RelevanceScore, 0.001)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
}

func TestRerank_EmptyDocuments(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("http://unreachable.invalid"))
	resp, err := client.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestRerank_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(RerankResponse{
			Results: []RerankResult{{Index: 0, RelevanceScore: 0.7}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Rerank(context.Background(), "q", []string{"doc"})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRerank_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Rerank(context.Background(), "q", []string{"doc"})
	assert.Error(t, err)
}

func TestRerank_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "invalid token"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Rerank(context.Background(), "q", []string{"doc"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
