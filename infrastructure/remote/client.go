// ABOUTME: HTTP client for the remote extraction and chat service
// ABOUTME: Implements ExtractionService and ChatService on top of the HTTPClient abstraction

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

const (
	apiName         = "extraction-service"
	maxResponseBody = 32 << 20
)

// Client talks to {base}/extract, {base}/status/{id} and {base}/chat
type Client struct {
	http    interfaces.HTTPClient
	baseURL string
	logger  interfaces.Logger
}

// NewClient creates a remote client. baseURL is used without its trailing slash.
func NewClient(httpClient interfaces.HTTPClient, baseURL string, logger interfaces.Logger) *Client {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Submit starts a new extraction job
func (c *Client) Submit(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
	var out interfaces.StatusResponse
	if err := c.postJSON(ctx, "submit", c.baseURL+"/extract", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckStatus fetches the current state of a job
func (c *Client) CheckStatus(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
	endpoint := c.baseURL + "/status/" + url.PathEscape(id)

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, coreerrors.NewTransportError("status", err)
	}
	defer resp.Body().Close()

	var out interfaces.StatusResponse
	if err := decodeResponse("status", resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Send forwards a chat message and returns the assistant reply
func (c *Client) Send(ctx context.Context, req interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	var out interfaces.ChatResponse
	if err := c.postJSON(ctx, "chat", c.baseURL+"/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, op, endpoint string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	resp, err := c.http.Post(ctx, endpoint, bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn("Remote request failed", map[string]interface{}{
			"op":    op,
			"error": err.Error(),
		})
		return coreerrors.NewTransportError(op, err)
	}
	defer resp.Body().Close()

	return decodeResponse(op, resp, out)
}

// decodeResponse maps non-2xx responses to ExternalAPIError and decodes the
// JSON body into out. Every failure is reported as a TransportError.
func decodeResponse(op string, resp interfaces.Response, out interface{}) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body(), maxResponseBody))
	if err != nil {
		return coreerrors.NewTransportError(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return coreerrors.NewTransportError(op, &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    truncate(strings.TrimSpace(string(body)), 200),
			API:        apiName,
		})
	}

	if err := json.Unmarshal(body, out); err != nil {
		return coreerrors.NewTransportError(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
