// Package api is a client for the Kibana machine learning endpoints used by
// the data frame analytics wizard.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/mlops-tools/dfa-wizard/internal/config"
	"github.com/mlops-tools/dfa-wizard/internal/constants"
	"github.com/mlops-tools/dfa-wizard/internal/http"
	"github.com/mlops-tools/dfa-wizard/internal/logging"
	"github.com/mlops-tools/dfa-wizard/internal/ratelimit"
	"github.com/mlops-tools/dfa-wizard/internal/version"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not all info
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg("retry: " + msg)
}

// apiMetrics tracks API usage statistics
type apiMetrics struct {
	sync.Mutex
	totalCalls    int64
	callsByScope  map[ratelimit.Scope]int64
	throttled     int64
	windowStart   time.Time
	callsInWindow int64
}

// Client talks to one Kibana instance with one API key.
type Client struct {
	httpClient *nethttp.Client
	config     *config.Config
	baseURL    string
	apiKey     string
	space      string
	registry   *ratelimit.Registry
	limiters   map[ratelimit.Scope]*ratelimit.RateLimiter
	metrics    *apiMetrics
	logger     *logging.Logger
}

// NewClient creates a new API client. logger may be nil.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.KibanaURL), "/")
	if baseURL == "" {
		return nil, errors.New("kibana url is empty; set it with 'config init' or DFA_KIBANA_URL")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	httpClient, err := http.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	registry := ratelimit.NewRegistry()
	c := &Client{
		config:   cfg,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		space:    strings.Trim(strings.TrimSpace(cfg.Space), "/"),
		registry: registry,
		limiters: registry.NewLimiters(),
		metrics: &apiMetrics{
			callsByScope: make(map[ratelimit.Scope]int64),
			windowStart:  time.Now(),
		},
		logger: logger,
	}
	for scope, limiter := range c.limiters {
		limiter.SetNotify(scope, func(s ratelimit.Scope, wait time.Duration) {
			logger.Warn().
				Str("scope", registry.ScopeDisplayString(s)).
				Dur("wait", wait).
				Msg("rate limited, waiting for API capacity")
		})
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = constants.APIRetryMax
	retryClient.RetryWaitMin = constants.APIRetryWaitMin
	retryClient.RetryWaitMax = constants.APIRetryWaitMax
	retryClient.Logger = &retryLogger{logger: logger}
	retryClient.CheckRetry = c.checkRetry

	c.httpClient = retryClient.StandardClient()
	return c, nil
}

// GetConfig returns the configuration used by this API client
func (c *Client) GetConfig() *config.Config {
	return c.config
}

// checkRetry feeds 429 responses back into the limiter and keeps writes from
// being replayed unless the server says it did no work.
func (c *Client) checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if resp != nil && resp.StatusCode == nethttp.StatusTooManyRequests {
		c.throttled(resp)
	}

	retry, policyErr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	if !retry || resp == nil || resp.Request == nil {
		// Connection errors on writes are retried too: retryablehttp only
		// sees them when the request never produced a response.
		return retry, policyErr
	}

	switch resp.Request.Method {
	case nethttp.MethodGet, nethttp.MethodHead:
		return retry, policyErr
	default:
		code := resp.StatusCode
		return code == nethttp.StatusTooManyRequests || code == nethttp.StatusServiceUnavailable, policyErr
	}
}

// throttled drains the limiter for the throttled scope and honours Retry-After.
func (c *Client) throttled(resp *nethttp.Response) {
	method, path := resp.Request.Method, resp.Request.URL.Path
	scope := c.registry.ResolveScope(method, path)

	c.metrics.Lock()
	c.metrics.throttled++
	c.metrics.Unlock()

	event := c.logger.Warn().
		Str("method", method).
		Str("path", path).
		Str("scope", c.registry.ScopeDisplayString(scope))

	limiter := c.limiters[scope]
	limiter.Drain()
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		event = event.Str("retry_after", retryAfter)
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			limiter.SetCooldown(time.Duration(secs) * time.Second)
		}
	}
	event.Msg("throttled by Kibana")
}

// spacePath prefixes path with the configured Kibana space.
func (c *Client) spacePath(path string) string {
	if c.space == "" || c.space == "default" {
		return path
	}
	return "/s/" + url.PathEscape(c.space) + path
}

// apiVersion returns the elastic-api-version a path expects.
func apiVersion(path string) string {
	if strings.HasPrefix(path, "/internal/") {
		return "1"
	}
	return "2023-10-31"
}

// doRequest performs an HTTP request with authentication and rate limiting
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*nethttp.Response, error) {
	scope := c.registry.ResolveScope(method, path)
	if err := c.limiters[scope].Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	c.recordCall(scope)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	fullPath := c.spacePath(path)
	target := c.baseURL + fullPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	opaqueID := constants.OpaqueIDPrefix + uuid.NewString()
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("kbn-xsrf", constants.AppName)
	req.Header.Set("elastic-api-version", apiVersion(path))
	req.Header.Set("x-elastic-internal-origin", "kibana")
	req.Header.Set("X-Opaque-Id", opaqueID)
	req.Header.Set("User-Agent", constants.AppName+"/"+version.Version)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", method).
			Str("path", fullPath).
			Str("opaque_id", opaqueID).
			Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", fullPath).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Str("opaque_id", opaqueID).
		Msg("API call")

	return resp, nil
}

func (c *Client) recordCall(scope ratelimit.Scope) {
	c.metrics.Lock()
	defer c.metrics.Unlock()

	c.metrics.totalCalls++
	c.metrics.callsByScope[scope]++
	c.metrics.callsInWindow++

	// Log stats every 30 seconds
	if elapsed := time.Since(c.metrics.windowStart); elapsed >= 30*time.Second {
		c.logger.Debug().
			Float64("req_per_sec", float64(c.metrics.callsInWindow)/elapsed.Seconds()).
			Int64("total_calls", c.metrics.totalCalls).
			Int64("throttled", c.metrics.throttled).
			Msg("API usage")
		c.metrics.callsInWindow = 0
		c.metrics.windowStart = time.Now()
	}
}

// CallCount returns how many requests the client has sent.
func (c *Client) CallCount() int64 {
	c.metrics.Lock()
	defer c.metrics.Unlock()
	return c.metrics.totalCalls
}

// do sends a request and decodes a 2xx JSON response into out (which may be
// nil). Any other status becomes a *ResponseError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, constants.APIRequestTimeout)
	defer cancel()

	resp, err := c.doRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodyBytes))
		return newResponseError(method, path, resp.StatusCode, data)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Ping checks that Kibana is reachable and the API key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.APIConnectionTestTimeout)
	defer cancel()
	return c.do(ctx, nethttp.MethodGet, "/api/status", nil, nil, nil)
}
