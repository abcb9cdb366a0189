package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/log"
	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/internal/telemetry"
	"github.com/felixgeelhaar/taskboard/internal/version"
)

// DefaultTimeout bounds every round trip unless overridden
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read
const maxBodySize = 10 << 20

// TokenSource yields the bearer token to attach to outgoing requests.
// An empty string means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token implements TokenSource
func (s StaticToken) Token() string { return string(s) }

// Client is the taskboard backend client. Every call is a single round
// trip: no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *log.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the blanket request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new backend client rooted at baseURL
// (e.g. http://localhost:8000/api).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDefault(c.logger).With("component", "api")
	return c
}

// BaseURL returns the root all request paths are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body (nil for none)
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, query, body)
}

// Put performs a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do performs one request and normalizes the outcome. It returns a
// *Response for statuses below 400, an *Error for backend rejections and a
// *errors.TaskboardError for transport failures.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	ctx, span := telemetry.StartRequestSpan(ctx, method, path)
	defer span.End()

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		tbErr := c.transportError(method, path, err)
		telemetry.RecordError(span, tbErr)
		c.logger.WarnContext(ctx, "request failed",
			"method", method, "path", path, "error_code", string(tbErr.Code), "error", err.Error())
		return nil, tbErr
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		tbErr := c.transportError(method, path, err)
		telemetry.RecordError(span, tbErr)
		return nil, tbErr
	}

	resp, err := Normalize(httpResp.StatusCode, httpResp.Header, raw)

	status := StatusOf(err)
	if resp != nil {
		status = resp.Status
	}
	c.metrics.RecordRequest(method, status, elapsed)
	telemetry.RecordDuration(span, "round_trip", elapsed)
	span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.Int("http.transport.status_code", httpResp.StatusCode),
	)

	c.logger.DebugContext(ctx, "request completed",
		"method", method,
		"path", path,
		"status", status,
		"transport_status", httpResp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration_ms", elapsed.Milliseconds(),
	)

	if err != nil {
		c.metrics.RecordRequestError(method, "status")
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.RecordSuccess(span)
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, tberrors.Wrap(tberrors.ErrCodeAPIRequest, "failed to marshal request body", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, tberrors.Wrap(tberrors.ErrCodeAPIRequest, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("User-Agent", version.UserAgent())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

func (c *Client) transportError(method, path string, err error) *tberrors.TaskboardError {
	if isTimeout(err) {
		c.metrics.RecordRequestError(method, "timeout")
		return tberrors.NewTimeoutError(method, path, err)
	}
	c.metrics.RecordRequestError(method, "transport")
	return tberrors.NewTransportError(method, path, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
