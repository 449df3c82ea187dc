// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"culturis/internal/common/metrics"
)

// Client is a timeout-bounded HTTP client that counts requests per upstream.
// It never retries.
type Client struct {
	httpClient *http.Client
	upstream   string
}

func NewClient(upstream string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		upstream:   upstream,
	}
}

// HTTPClient exposes the underlying client for SDKs that accept one.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.UpstreamRequests.WithLabelValues(c.upstream, status).Inc()
	return resp, err
}
