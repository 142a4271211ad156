// Package cohere provides a client for the Cohere Rerank API.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/chemsource/supplier-cli/internal/resilience"
)

const defaultBaseURL = "https://api.cohere.com"

// Client performs relevance reranking via Cohere.
type Client interface {
	// Rerank scores each document's relevance to the query. Scores are
	// bounded to [0, 1].
	Rerank(ctx context.Context, query string, documents []string) (*RerankResponse, error)
}

// RerankResponse is the parsed Cohere rerank response.
type RerankResponse struct {
	Results []RerankResult `json:"results"`
}

// RerankResult scores one document by its input index.
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithModel overrides the default rerank model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Cohere rerank client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   "rerank-v3.5",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			OnRetry:        resilience.RetryLogger("cohere", "rerank"),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

func (c *httpClient) Rerank(ctx context.Context, query string, documents []string) (*RerankResponse, error) {
	if len(documents) == 0 {
		return &RerankResponse{}, nil
	}

	reqBody, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	})
	if err != nil {
		return nil, eris.Wrap(err, "cohere: marshal request")
	}

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.send(ctx, reqBody)
	})
	if err != nil {
		return nil, err
	}

	var result RerankResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "cohere: unmarshal response")
	}
	return &result, nil
}

// send performs one rerank request. Connection failures and retryable
// statuses are returned as transient errors so the retry layer can act on
// them.
func (c *httpClient) send(ctx context.Context, reqBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/rerank", bytes.NewReader(reqBody))
	if err != nil {
		return nil, eris.Wrap(err, "cohere: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "cohere: send request"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "cohere: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("cohere: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}
	return body, nil
}
