// Package transport provides the authenticated, rate limited HTTP client
// used to talk to the hosted database service.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication, client
// side rate limiting and retries of transient failures.
type Client struct {
	http       *http.Client
	auth       Authenticator
	token      string
	service    string
	baseURL    string
	headers    http.Header
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sends requests through a copy of hc. The copy shares hc's
// transport, so later options never modify the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithBaseURL sets the URL that request paths are relative to.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithServiceName sets the service name reported in API errors.
func WithServiceName(name string) Option {
	return func(c *Client) {
		c.service = name
	}
}

// WithRateLimit limits requests per second. Zero or less disables the
// limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets how many times a retryable failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the first retry delay and its cap. Delays double on
// each attempt unless the server sends Retry-After.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff, c.maxBackoff = initial, maxDelay
	}
}

// New creates a new transport client with the specified authenticator and
// token.
func New(auth Authenticator, token string, opts ...Option) *Client {
	if auth == nil {
		auth = NoAuth{}
	}
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		token:      token,
		service:    "http",
		headers:    make(http.Header),
		limiter:    rate.NewLimiter(rate.Limit(constants.DefaultRateLimit), 1),
		maxRetries: constants.MaxRetries,
		backoff:    constants.RetryBackoff,
		maxBackoff: constants.MaxRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption configures a single call to Do.
type RequestOption func(*requestConfig)

type requestConfig struct {
	retryable func(*errors.APIError) bool
}

// NotIdempotent marks a request that must not be repeated once the service
// may have acted on it, such as one creating a page. Only rate limited
// responses, which the service rejects before processing, are retried.
func NotIdempotent() RequestOption {
	return func(rc *requestConfig) {
		rc.retryable = func(e *errors.APIError) bool {
			return e.StatusCode == http.StatusTooManyRequests
		}
	}
}

// Do sends a JSON request and decodes the JSON response into target.
// Body and target may be nil. Rate limited, conflicting and server side
// failures are retried unless opts narrow that; the final failure is an
// *errors.APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, target any, opts ...RequestOption) error {
	rc := requestConfig{retryable: (*errors.APIError).Retryable}
	for _, opt := range opts {
		opt(&rc)
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.WrapParse("json", "request", err)
		}
	}

	logger := logging.FromContext(ctx)
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		resp, err := c.send(ctx, method, path, payload)
		if err == nil {
			err = DecodeResponse(resp, c.service, target)
		}
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var apiErr *errors.APIError
		if !errors.As(err, &apiErr) || !rc.retryable(apiErr) || attempt >= c.maxRetries {
			return err
		}

		delay := c.delay(attempt, resp)
		logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying request")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+path, err)
	}

	if c.token != "" {
		c.auth.Apply(req, c.token)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	// Set common headers
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := errors.NewAPIError(c.service, 0, err.Error())
		apiErr.Endpoint = method + " " + path
		apiErr.Err = err
		return nil, apiErr
	}
	return resp, nil
}

// delay returns the wait before the next attempt.
func (c *Client) delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if d, ok := RetryAfter(resp.Header.Get("Retry-After")); ok {
			return min(d, c.maxBackoff)
		}
	}
	d := c.backoff << attempt
	if d <= 0 || d > c.maxBackoff {
		d = c.maxBackoff
	}
	return d
}
