// Package hunter provides a client for the Hunter.io email verification API.
package hunter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.hunter.io/v2"

// Verdict classifies the deliverability of an address.
type Verdict string

const (
	VerdictDeliverable   Verdict = "deliverable"
	VerdictUndeliverable Verdict = "undeliverable"
	VerdictUnknown       Verdict = "unknown"
)

// Client performs email deliverability checks.
type Client interface {
	Verify(ctx context.Context, address string) (Verdict, error)
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Hunter email verifier client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type verifyResponse struct {
	Data struct {
		Status string `json:"status"`
		Result string `json:"result"`
	} `json:"data"`
}

func (c *httpClient) Verify(ctx context.Context, address string) (Verdict, error) {
	params := url.Values{}
	params.Set("email", address)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/email-verifier?"+params.Encode(), nil)
	if err != nil {
		return VerdictUnknown, eris.Wrap(err, "hunter: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return VerdictUnknown, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return VerdictUnknown, eris.Wrap(err, "hunter: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return VerdictUnknown, eris.Errorf("hunter: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result verifyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return VerdictUnknown, eris.Wrap(err, "hunter: unmarshal response")
	}

	// Hunter reports "deliverable", "undeliverable", "risky", "unknown".
	// Risky addresses (accept-all domains) are treated as unknown rather
	// than dropped.
	switch result.Data.Result {
	case "deliverable":
		return VerdictDeliverable, nil
	case "undeliverable":
		return VerdictUndeliverable, nil
	default:
		return VerdictUnknown, nil
	}
}
