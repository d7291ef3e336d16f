package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
// Responses with status 429 are retried up to the configured limit,
// honoring Retry-After when the server sends one.
type Client struct {
	http       *http.Client
	auth       Authenticator
	service    string
	apiKey     string
	headers    map[string]string
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithRetries sets how often a rate limited request is retried and the
// base delay used when the server does not send Retry-After.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// New creates a new transport client for the named service.
func New(service, apiKey string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		service:    service,
		apiKey:     apiKey,
		headers:    make(map[string]string),
		maxRetries: constants.MaxRetries,
		backoff:    constants.RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the name used in errors and logs.
func (c *Client) Service() string {
	return c.service
}

// DoWithContext performs an HTTP request with authentication applied and context support.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	// Set common headers
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(errors.ErrTimeout, err)
			}
			return nil, &errors.APIError{
				Provider: c.service,
				Endpoint: req.URL.Path,
				Message:  "request failed",
				Err:      err,
			}
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		wait := retryDelay(resp.Header.Get("Retry-After"), c.backoff, attempt)
		_ = resp.Body.Close()
		logging.FromContext(ctx).Warn().
			Str("service", c.service).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("Rate limited, retrying")

		if err := sleep(ctx, wait); err != nil {
			return nil, errors.Join(errors.ErrTimeout, err)
		}
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, errors.WrapIO("rewind", "request body", err)
			}
			req.Body = body
		}
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapIO("create", "GET "+url, err)
	}
	return c.DoWithContext(ctx, req)
}

// PostJSON marshals body and POSTs it to url.
func (c *Client) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapParse("json", "request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapIO("create", "POST "+url, err)
	}
	return c.DoWithContext(ctx, req)
}

// retryDelay picks the wait before the next attempt.
func retryDelay(retryAfter string, base time.Duration, attempt int) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, constants.MaxRetryBackoff)
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		return min(max(time.Until(when), 0), constants.MaxRetryBackoff)
	}
	return min(base<<attempt, constants.MaxRetryBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
