package songlink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// apiBaseURL is the base URL of the aggregation API.
	apiBaseURL = "https://api.song.link"
	// apiVersion is the pinned API version.
	apiVersion = "v1-alpha.1"
	// DefaultTimeout bounds a single resolution call when no explicit
	// timeout is configured.
	DefaultTimeout = 10 * time.Second
	// maxResponseSize limits how much of the response body is read.
	maxResponseSize = 4 << 20
)

// Observer is called once per upstream HTTP request with the request latency
// and status code, so the caller can attach metrics without patching the
// transport. Status is zero when the request never completed.
type Observer func(method, endpoint string, status int, elapsed time.Duration)

// Client performs resolution calls against the aggregation API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observe    Observer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithObserver attaches a latency/status observer to the client.
func WithObserver(observe Observer) Option {
	return func(c *Client) { c.observe = observe }
}

// NewClient creates a resolution client with the given per-request timeout.
// A zero timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    apiBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve issues a single GET to the links endpoint for the given target URL
// and returns the decoded response. It never retries: transport failures and
// non-2xx statuses return an *UnavailableError, undecodable 2xx bodies an
// *MalformedResponseError. Validation of the response content is the
// reconciler's job, since nested entity fields are legitimately optional.
func (c *Client) Resolve(ctx context.Context, target string) (*Response, error) {
	endpoint := fmt.Sprintf("%s/%s/links", c.baseURL, apiVersion)
	reqURL := fmt.Sprintf("%s?url=%s", endpoint, url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.observe != nil {
			c.observe(http.MethodGet, endpoint, 0, time.Since(start))
		}
		return nil, &UnavailableError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if c.observe != nil {
		c.observe(http.MethodGet, endpoint, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UnavailableError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	return &decoded, nil
}
