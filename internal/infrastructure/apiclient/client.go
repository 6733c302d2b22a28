// Package apiclient talks to the remote delivery REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "storefront/1.0"
)

// HTTPClient is the transport used by Client. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client is a JSON client for the delivery API. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      HTTPClient
	timeout   time.Duration
	headers   http.Header
	userAgent string
	log       zerolog.Logger

	inflight atomic.Int64
	errMu    sync.RWMutex
	lastErr  error
}

// New returns a Client for the API rooted at baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:   u,
		timeout:   defaultTimeout,
		headers:   make(http.Header),
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// Loading reports whether any request is in flight.
func (c *Client) Loading() bool {
	return c.inflight.Load() > 0
}

// LastError returns the failure of the most recent request, or nil.
func (c *Client) LastError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()
	return c.lastErr
}

// ClearError resets LastError.
func (c *Client) ClearError() {
	c.setLastError(nil)
}

func (c *Client) setLastError(err error) {
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
}

// Request describes a single API call.
type Request struct {
	// Op names the call in logs and metrics.
	Op      string
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Token   string
	Headers http.Header
}

// envelope holds the fields every API response may carry.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   any    `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	if s, ok := e.Error.(string); ok {
		return s
	}
	return ""
}

// Do performs req and decodes the JSON response into out, which may be nil.
//
// Non-2xx answers and 2xx answers with "success": false become
// *domain.APIError. Transport and decoding failures become *domain.NetworkError.
func (c *Client) Do(ctx context.Context, req Request, out any) (err error) {
	op := req.Op
	if op == "" {
		op = strings.ToLower(req.Method) + " " + req.Path
	}

	c.inflight.Add(1)
	c.setLastError(nil)
	start := time.Now()
	defer func() {
		c.inflight.Add(-1)
		metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.APIRequestsTotal.WithLabelValues(op, outcome(err)).Inc()
		if err != nil {
			c.setLastError(err)
			c.log.Debug().Err(err).Str("op", op).Dur("elapsed", time.Since(start)).Msg("api call failed")
			return
		}
		c.log.Debug().Str("op", op).Dur("elapsed", time.Since(start)).Msg("api call")
	}()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	var env envelope
	_ = json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.message()
		if msg == "" {
			msg = fmt.Sprintf("HTTP error: status %d", resp.StatusCode)
		}
		return &domain.APIError{Status: resp.StatusCode, Message: msg}
	}

	if env.Success != nil && !*env.Success {
		msg := env.message()
		if msg == "" {
			msg = "request was not successful"
		}
		return &domain.APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, vs := range c.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	return httpReq, nil
}

func outcome(err error) string {
	var apiErr *domain.APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "network_error"
	}
}
