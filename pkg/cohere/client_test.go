package cohere

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
		assert.Equal(t, "/v2/rerank", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rerank-v3.5", body.Model)
		assert.Equal(t, "Acetone 67-64-1", body.Query)
		assert.Len(t, body.Documents, 2)

		_ = json.NewEncoder(w).Encode(RerankResponse{
			Results: []RerankResult{
				{Index: 1, RelevanceScore: 0.92},
				{Index: 0, RelevanceScore: 0.41},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Rerank(context.Background(), "Acetone 67-64-1", []string{"doc a", "doc b"})

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Results[0].Index)
	assert.InDelta(t, 0.92, resp.Results[0].RelevanceScore, 0.001)
}

func TestRerank_EmptyDocuments(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("http://unreachable.invalid"))
	resp, err := client.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestRerank_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(RerankResponse{
			Results: []RerankResult{{Index: 0, RelevanceScore: 0.5}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Rerank(context.Background(), "q", []string{"doc"})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRerank_RetriesGatewayTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		_ = json.NewEncoder(w).Encode(RerankResponse{
			Results: []RerankResult{{Index: 0, RelevanceScore: 0.3}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Rerank(context.Background(), "q", []string{"doc"})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRerank_NonRetryableError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "invalid request"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Rerank(context.Background(), "q", []string{"doc"})

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
