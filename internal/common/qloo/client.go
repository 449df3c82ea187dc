// Package qloo is the client of the Qloo recommendation API.
package qloo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"culturis/internal/common/config"
	apphttp "culturis/internal/common/http"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"
	"culturis/internal/models"
)

const (
	DefaultBaseURL = "https://hackathon.api.qloo.com"
	defaultTimeout = 30 * time.Second
	cacheKeyPrefix = "qloo:insights:"
	maxErrorBody   = 4096
)

// UpstreamError is a non-2xx answer from the API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("qloo returned status %d: %s", e.StatusCode, e.Body)
}

// Cache stores decoded responses. A nil Cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *apphttp.Client
	cache      Cache
	cacheTTL   time.Duration
	logger     logger.Logger
}

// NewClient builds a client. Caching is on only when cache is non-nil and
// the configured TTL is positive.
func NewClient(cfg config.QlooConfig, cache Cache, log logger.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		cache = nil
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: apphttp.NewClient("qloo", timeout),
		cache:      cache,
		cacheTTL:   ttl,
		logger:     log,
	}
}

// EncodeParams renders planned params as a query string. Keys are sorted so
// equal params give equal strings.
func EncodeParams(params map[string]interface{}) string {
	values := url.Values{}
	for key, v := range params {
		values.Set(key, paramString(v))
	}
	return values.Encode()
}

func paramString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// CacheKey is the Redis key of a response.
func CacheKey(endpoint, query string) string {
	return cacheKeyPrefix + endpoint + "?" + query
}

// Get calls endpoint with params and returns the decoded body, which
// re-encodes to the exact bytes received.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]interface{}) (*models.InsightsResponse, error) {
	query := EncodeParams(params)
	key := CacheKey(endpoint, query)

	if c.cache != nil {
		var cached models.InsightsResponse
		hit, err := c.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			c.logger.WithContext(ctx).Warn("qloo cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		if hit {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.logger.WithContext(ctx).Debug("qloo cache hit", map[string]interface{}{"key": key})
			return &cached, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	resp, err := c.fetch(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, key, resp, c.cacheTTL); err != nil {
			c.logger.WithContext(ctx).Warn("qloo cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, endpoint, query string) (*models.InsightsResponse, error) {
	target := c.baseURL + endpoint
	if query != "" {
		target += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.WithContext(ctx).Info("qloo request finished", map[string]interface{}{
		"endpoint":   endpoint,
		"status":     resp.StatusCode,
		"bytes":      len(body),
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out models.InsightsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
