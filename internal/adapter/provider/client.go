// Package provider implements the outbound HTTP client for calls to
// provider agent endpoints.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 4 << 20

// Response carries the provider's HTTP status and its body. A Response is
// returned for every answer the provider gives, including error statuses;
// only transport-level failures surface as errors from Call, so callers can
// distinguish "could not reach it" from "it answered with an error".
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports whether the provider answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is an HTTP client for invoking providers.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a provider client with a bounded per-call timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Call POSTs the transaction payload to endpoint+path.
func (c *Client) Call(ctx context.Context, endpoint, path string, payload map[string]interface{}) (*Response, error) {
	body, err := json.Marshal(map[string]interface{}{"data": payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider payload: %w", err)
	}

	url := strings.TrimSuffix(endpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: normalizeBody(data)}, nil
}

// normalizeBody keeps JSON bodies as-is and wraps anything else so the
// result is always valid JSON.
func normalizeBody(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(trimmed)})
	return wrapped
}
