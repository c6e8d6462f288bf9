package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/logger"
	"github.com/synk/client/internal/infrastructure/metrics"
	"github.com/synk/client/internal/ports"
)

// Client is the REST gateway. It attaches bearer tokens, retries once on an
// authorization failure after refreshing, and unwraps paginated envelopes.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenSource
	limiter *rate.Limiter
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// New creates a gateway client. The metrics set may be nil.
func New(cfg config.APIConfig, tokens ports.TokenSource, appLogger *logger.Logger, m *metrics.Metrics) *Client {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(limit, burst),
		logger:  appLogger.WithComponent("gateway"),
		metrics: m,
	}
}

// Do issues a JSON request. A non-nil out receives the decoded response body;
// when the body is a paginated envelope the inner results array is decoded
// instead. 204 responses decode nothing.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	requestID := uuid.NewString()
	start := time.Now()

	token, _ := c.tokens.Token(ctx)

	resp, respBody, err := c.send(ctx, method, path, payload, token, requestID)
	if err != nil {
		return err
	}

	// On 401 with a token present, refresh and retry exactly once
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		if refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
			c.logger.Warnw("Token refresh after 401 failed", "error", refreshErr, "request_id", requestID)
		} else if token, _ = c.tokens.Token(ctx); token != "" {
			resp, respBody, err = c.send(ctx, method, path, payload, token, requestID)
			if err != nil {
				return err
			}
		}
	}

	duration := time.Since(start)
	c.logger.LogAPIRequest(method, path, requestID, resp.StatusCode, float64(duration.Nanoseconds())/1e6)
	if c.metrics != nil {
		c.metrics.ObserveAPIRequest(method, path, resp.StatusCode, duration)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	return decodeBody(respBody, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token, requestID string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp, respBody, nil
}

// decodeBody unwraps the paginated-list convention: an object body holding a
// "results" array decodes as that array.
func decodeBody(body []byte, out any) error {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Results) > 0 {
			inner := bytes.TrimLeft(envelope.Results, " \t\r\n")
			if len(inner) > 0 && inner[0] == '[' {
				body = envelope.Results
			}
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
