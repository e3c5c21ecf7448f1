/* client.go
 * Contains the shared http client used to talk to the tournament api. One Client is created per base URL: the admin
 * client attaches the session token, the public client is the same base URL without one
 */

package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "TorneosAdmin/1.0"

// Client performs json requests against the api
type Client struct {
	base        *url.URL
	httpClient  *http.Client
	tokenSource func() string
	limiter     *rate.Limiter
	userAgent   string
	logger      *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the underlying http client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets the function used to read the auth token before each request. An empty token sends no
// Authorization header
func WithTokenSource(source func() string) Option {
	return func(c *Client) { c.tokenSource = source }
}

// WithRateLimit throttles outgoing requests to rps requests per second. A non positive rps disables throttling
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for baseURL
// Preconditions: Receives an absolute base url such as https://api.example.com
// Postconditions: Returns the client, or an error if the url is invalid
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		userAgent:  defaultUserAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the base url the client was created with
func (c *Client) BaseURL() string {
	return c.base.String()
}

// URL builds the absolute url for an api path and query
func (c *Client) URL(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Get performs a GET request and decodes the response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST request with a json body
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a json body
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends a request and decodes a json response into out (which may be nil).
// Preconditions: Receives the http method, an api path (e.g. /api/zonas), optional query and body
// Postconditions: Returns nil, or a *Error describing the failure. Nothing is retried
func (c *Client) Do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return transportError(err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Message: fmt.Sprintf("could not encode request: %v", err), Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	target := c.URL(path, query)
	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return transportError(err)
	}

	requestID := uuid.NewString()
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Encoding", "gzip")
	request.Header.Set("X-Request-ID", requestID)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method), zap.String("url", target), zap.String("request_id", requestID), zap.Error(err))
		return transportError(err)
	}
	defer response.Body.Close()

	data, err := readBody(response)
	if err != nil {
		return transportError(err)
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", response.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return serverError(response.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return decodeError(err)
	}
	return nil
}

// readBody reads the response, transparently handling gzip encoded bodies
func readBody(response *http.Response) ([]byte, error) {
	if response.Header.Get("Content-Encoding") != "gzip" {
		return io.ReadAll(response.Body)
	}
	reader, err := gzip.NewReader(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
