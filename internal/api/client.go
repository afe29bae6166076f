// Package api is the HTTP client for the portfolio REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	"github.com/salmonumbrella/folio-cli/internal/debug"
	ctxerrors "github.com/salmonumbrella/folio-cli/internal/errors"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseDelay      = 1 * time.Second

	defaultCircuitBreakerThreshold       = 5
	defaultCircuitBreakerRecoveryTimeout = 30 * time.Second

	// RequestIDHeader carries a fresh uuid on every request.
	RequestIDHeader = "X-Request-Id"
)

// ErrCircuitOpen is returned when the circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open - too many consecutive API failures")

// circuitBreaker stops calling an API that keeps failing with 5xx.
type circuitBreaker struct {
	mu              sync.Mutex
	failures        int
	lastFailure     time.Time
	open            bool
	threshold       int
	recoveryTimeout time.Duration
	enabled         bool
}

func (cb *circuitBreaker) recordSuccess() {
	if !cb.enabled {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.open {
		slog.Info("circuit breaker recovered", "component", "circuit_breaker")
	}
	cb.failures = 0
	cb.open = false
}

// recordFailure returns true if this failure opened the circuit.
func (cb *circuitBreaker) recordFailure() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()
	if cb.failures >= cb.threshold && !cb.open {
		cb.open = true
		slog.Warn("circuit breaker opened", "component", "circuit_breaker", "failures", cb.failures)
		return true
	}
	return false
}

// isOpen half-opens the circuit once the recovery timeout has passed.
func (cb *circuitBreaker) isOpen() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.open {
		return false
	}
	if time.Since(cb.lastFailure) > cb.recoveryTimeout {
		cb.open = false
		cb.failures = 0
		slog.Debug("circuit breaker half-open, attempting recovery", "component", "circuit_breaker")
		return false
	}
	return true
}

// Client talks to the portfolio API. The bearer token is read from the
// session store on every request; a 401 clears the store.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	store          auth.SessionStore
	userAgent      string
	maxRetries     int
	circuitBreaker *circuitBreaker
	quota          quotaTracker
	// fixed replaces the session store when set
	fixed  string
	header http.Header
}

// NewClient creates a client for baseURL (e.g. http://localhost:3000/api).
// store may be nil for unauthenticated use.
func NewClient(baseURL string, store auth.SessionStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		store:      store,
		userAgent:  "folio-cli",
		maxRetries: maxRetries,
		circuitBreaker: &circuitBreaker{
			threshold:       defaultCircuitBreakerThreshold,
			recoveryTimeout: defaultCircuitBreakerRecoveryTimeout,
		},
	}
}

// WithHTTPClient sets a custom HTTP client
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// WithToken sends token on every request instead of the session token. A
// rejected fixed token is reported as is and nothing is cleared.
func (c *Client) WithToken(token string) *Client {
	c.fixed = token
	return c
}

// WithHeader sets a header on every request, replacing a default.
func (c *Client) WithHeader(key, value string) *Client {
	if c.header == nil {
		c.header = http.Header{}
	}
	c.header.Set(key, value)
	return c
}

// WithMaxRetries sets the maximum number of retries for transient errors.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithCircuitBreaker enables circuit breaker with custom threshold and recovery timeout
func (c *Client) WithCircuitBreaker(threshold int, recoveryTimeout time.Duration) *Client {
	c.circuitBreaker.enabled = true
	c.circuitBreaker.threshold = threshold
	c.circuitBreaker.recoveryTimeout = recoveryTimeout
	return c
}

// EnableCircuitBreaker enables circuit breaker with default settings
func (c *Client) EnableCircuitBreaker() *Client {
	c.circuitBreaker.enabled = true
	return c
}

// WithDebugOutput traces every request and response to w.
func (c *Client) WithDebugOutput(w io.Writer) *Client {
	if w == nil {
		w = os.Stderr
	}
	c.httpClient.Transport = debug.NewDebugTransport(c.httpClient.Transport, w)
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Quota returns the rate limit window from the latest response, false
// before any response arrived.
func (c *Client) Quota() (Quota, bool) {
	return c.quota.current()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// public requests never carry a token and never clear the session
	public bool
}

func (r request) url(base string) string {
	u := base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

func (c *Client) token() (string, error) {
	if c.fixed != "" {
		return c.fixed, nil
	}
	if c.store == nil {
		return "", nil
	}
	s, err := c.store.Load()
	if errors.Is(err, auth.ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

// do performs req with retries and returns the raw response body.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	target := req.url(c.baseURL)

	if c.circuitBreaker.isOpen() {
		return nil, ctxerrors.WrapContext(req.method, target, 0, fmt.Errorf("%w: %w", &ctxerrors.CircuitBreakerError{}, ErrCircuitOpen))
	}

	token := ""
	if !req.public {
		var err error
		if token, err = c.token(); err != nil {
			return nil, ctxerrors.WrapContext(req.method, target, 0, fmt.Errorf("failed to load session: %w", err))
		}
	}

	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt, lastErr)
			var apiErr *APIError
			if errors.As(lastErr, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
				slog.Debug("rate limited, waiting before retry",
					"method", req.method,
					"path", req.path,
					"attempt", attempt,
					"delay", delay.String(),
					"retry_after", apiErr.RetryAfter.String())
			} else {
				slog.Debug("retrying request",
					"method", req.method,
					"path", req.path,
					"attempt", attempt,
					"delay", delay.String())
			}

			select {
			case <-ctx.Done():
				return nil, ctxerrors.WrapContext(req.method, target, 0, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := c.doOnce(ctx, req.method, target, payload, token)
		if err == nil {
			c.circuitBreaker.recordSuccess()
			return body, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && isRetryable(apiErr.StatusCode) {
			continue
		}
		return nil, c.wrapFailure(req, target, token, err)
	}

	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.StatusCode >= 500 {
		c.circuitBreaker.recordFailure()
	}
	if apiErr != nil && apiErr.StatusCode == http.StatusTooManyRequests {
		lastErr = fmt.Errorf("%w: %w", lastErr, &ctxerrors.RateLimitError{RetryAfter: apiErr.RetryAfter})
	}
	return nil, ctxerrors.WrapContext(req.method, target, getStatusCode(lastErr), lastErr)
}

// wrapFailure attaches request context and turns a 401 into an auth error.
// A rejected token is removed from the session store.
func (c *Client) wrapFailure(req request, target, token string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && !req.public && c.fixed == "" {
		if token == "" {
			err = ctxerrors.AuthRequiredError(err)
		} else {
			if c.store != nil {
				if clearErr := c.store.Clear(); clearErr != nil {
					slog.Warn("failed to clear rejected session", "error", clearErr)
				} else {
					slog.Debug("session rejected by API, cleared", "path", req.path)
				}
			}
			err = ctxerrors.SessionExpiredError(err)
		}
	}
	return ctxerrors.WrapContext(req.method, target, getStatusCode(err), err)
}

// doOnce performs a single attempt and decodes API errors.
func (c *Client) doOnce(ctx context.Context, method, target string, payload []byte, token string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, vals := range c.header {
		req.Header[key] = vals
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if q := c.quota.observe(resp); q.Low() {
		slog.Warn("rate limit nearly exhausted", "remaining", q.Remaining, "limit", q.Limit, "reset_at", q.ResetAt)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			RequestID:  requestID,
		}
		if id := resp.Header.Get(RequestIDHeader); id != "" {
			apiErr.RequestID = id
		}
		var errResp ErrorResponse
		if len(data) > 0 && json.Unmarshal(data, &errResp) == nil {
			if errResp.StatusCode == 0 {
				errResp.StatusCode = resp.StatusCode
			}
			apiErr.Response = &errResp
		}
		return nil, apiErr
	}

	return data, nil
}

// doJSON performs req and decodes a non-empty response into result.
func (c *Client) doJSON(ctx context.Context, req request, result any) error {
	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetJSON performs a GET against path below the base URL and decodes the
// body into result.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	return c.doJSON(ctx, request{method: http.MethodGet, path: path, query: query}, result)
}

// calculateRetryDelay honours Retry-After, else backs off 1s, 2s, 4s plus
// up to 25% jitter.
func (c *Client) calculateRetryDelay(attempt int, lastErr error) time.Duration {
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}

	delay := baseDelay * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(delay / 4)))
	return delay + jitter
}

// isRetryable returns true if the HTTP status code indicates a retryable error
func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// parseRetryAfter accepts delay-seconds or an HTTP date; 0 if unparseable.
func parseRetryAfter(retryAfter string) time.Duration {
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}

// getStatusCode extracts the HTTP status code from an error if it's an APIError
func getStatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
