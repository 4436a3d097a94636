// Package webhookproxy delivers signed JSON events to a third-party webhook
// endpoint such as an automation workflow that contacts vendors.
package webhookproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Header names sent with every delivery.
const (
	HeaderEvent     = "X-Webhook-Event"
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
)

// maxBodyLog caps how much of a response body is kept for the delivery log.
const maxBodyLog = 4096

// Request is one delivery. Signature is the full header value, e.g. "sha256=<hex>".
type Request struct {
	Event     string
	Body      []byte
	Signature string
	Timestamp time.Time
}

// Result is what the endpoint answered.
type Result struct {
	StatusCode int
	Body       string
}

// Delivered reports whether the endpoint accepted the event.
func (r *Result) Delivered() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts events to a single webhook URL.
type Client struct {
	httpClient *http.Client
	url        string
	debug      bool
}

// NewClient constructs a client for url with the given request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		debug:      os.Getenv("ENV") == "development",
	}
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	return c.url
}

// Send posts req. A transport failure returns an error and a nil Result; any
// HTTP answer, including non-2xx, returns a Result.
func (c *Client) Send(ctx context.Context, req Request) (*Result, error) {
	if c.debug {
		log.Debug().
			Str("url", c.url).
			Str("event", req.Event).
			RawJSON("request", req.Body).
			Msg("[WEBHOOK] Outgoing request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderEvent, req.Event)
	httpReq.Header.Set(HeaderTimestamp, req.Timestamp.UTC().Format(time.RFC3339))
	if req.Signature != "" {
		httpReq.Header.Set(HeaderSignature, req.Signature)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("event", req.Event).
			Int("status_code", resp.StatusCode).
			Str("response", string(respBody)).
			Msg("[WEBHOOK] Incoming response")
	}

	return &Result{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}
