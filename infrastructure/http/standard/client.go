// ABOUTME: net/http based HTTPClient with retries on idempotent requests
// ABOUTME: GETs back off exponentially on transport errors and 5xx; POSTs are sent once

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

const (
	defaultMaxRetries = 3
	defaultUserAgent  = "ContentCapture/1.0"
)

// Options configures the HTTP client
type Options struct {
	// Timeout bounds a whole request including reading the body
	Timeout time.Duration

	// MaxRetries is the number of GET attempts; values below 1 mean the default
	MaxRetries int

	// UserAgent overrides the User-Agent header
	UserAgent string

	// Transport replaces http.DefaultTransport, e.g. with a logging round tripper
	Transport http.RoundTripper

	// BaseBackoff is the delay before the first retry; it doubles each attempt
	BaseBackoff time.Duration
}

// Client implements interfaces.HTTPClient
type Client struct {
	client      *http.Client
	maxRetries  int
	userAgent   string
	baseBackoff time.Duration
}

// NewClient creates a client from opts
func NewClient(opts Options) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 100 * time.Millisecond
	}

	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		maxRetries:  opts.MaxRetries,
		userAgent:   opts.UserAgent,
		baseBackoff: opts.BaseBackoff,
	}
}

// NewStandardHTTPClient creates a client with the given timeout and default options
func NewStandardHTTPClient(timeout time.Duration) *Client {
	return NewClient(Options{Timeout: timeout})
}

// Get performs an HTTP GET request, retrying transport failures and 5xx responses
func (c *Client) Get(ctx context.Context, url string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode < 500 || attempt == c.maxRetries-1 {
			return newResponse(resp), nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return nil, lastErr
}

// Post performs a single HTTP POST with a JSON body. Submits are not
// idempotent, so they are never retried.
func (c *Client) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return newResponse(resp), nil
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

func newResponse(resp *http.Response) *httpResponse {
	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}
