// Package http implements the authenticated request executor for the
// console API.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/talltechy/insightvm-go/internal/auth"
	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// Request represents an HTTP request to the console.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an HTTP response from the console.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the HTTP executor. Every request flows through Do or DoRaw;
// the two differ only in the Accept header and in who owns decoding.
// Do is for JSON endpoints, DoRaw for binary payloads such as generated
// report output. The mode is always the caller's explicit choice, never
// inferred from the response content type.
type Client struct {
	baseURL        string
	provider       auth.Provider
	httpClient     *retryablehttp.Client
	logger         insightvm.Logger
	debug          bool
	userAgent      string
	connectTimeout time.Duration
	readTimeout    time.Duration
	skipTLSVerify  bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets a structured logger.
func WithLogger(logger insightvm.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables retries for transient failures (connection
// errors, 429, and 5xx responses). Non-retryable statuses are returned
// after the first attempt.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeouts sets the connection-establishment and full-exchange
// timeouts. Zero values keep the defaults.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		if connect > 0 {
			c.connectTimeout = connect
		}

		if read > 0 {
			c.readTimeout = read
		}
	}
}

// WithTLSSkipVerify disables certificate verification. Callers are
// expected to gate this on a development-mode check.
func WithTLSSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.skipTLSVerify = skip
	}
}

// NewClient creates a new HTTP executor for the console at baseURL.
// Requests are not retried unless WithRetryConfig is given.
func NewClient(baseURL string, provider auth.Provider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	// Surface the last response instead of retryablehttp's "giving up"
	// error so status handling below sees the real status code.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		provider:       provider,
		httpClient:     retryClient,
		userAgent:      "insightvm-go/" + constants.Version,
		connectTimeout: constants.DefaultConnectTimeout,
		readTimeout:    constants.DefaultReadTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: client.connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: client.connectTimeout,
	}

	if client.skipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // gated on dev mode by the caller
	}

	retryClient.HTTPClient.Transport = transport
	retryClient.HTTPClient.Timeout = client.readTimeout

	return client
}

// Do executes a structured request: the response body is expected to be
// JSON and an Accept header says so. On a non-2xx status the parsed API
// error is returned alongside the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.execute(ctx, req, false)
}

// DoRaw executes a raw request: the response body is returned verbatim,
// without any content negotiation or decoding. Used for binary payloads
// such as report downloads.
func (c *Client) DoRaw(ctx context.Context, req *Request) (*Response, error) {
	return c.execute(ctx, req, true)
}

// Get performs a structured GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// GetRaw performs a raw GET request.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.DoRaw(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a structured POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a structured PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a structured DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) execute(ctx context.Context, req *Request, raw bool) (*Response, error) {
	fullURL := c.buildURL(req.Path, req.Query)

	var bodyReader io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if !raw {
		httpReq.Header.Set("Accept", "application/json")
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.provider != nil {
		err = c.provider.Apply(httpReq.Request)
		if err != nil {
			return nil, fmt.Errorf("applying authentication: %w", err)
		}
	}

	c.logRequest(req.Method, fullURL)

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(req.Method, fullURL, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyTransportError(req.Method, fullURL, err)
	}

	c.logResponse(req.Method, fullURL, httpResp.StatusCode, len(body), time.Since(start))

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, insightvm.ParseAPIError(httpResp.StatusCode, body)
	}

	return resp, nil
}

// buildURL joins the base URL, the API prefix, and the request path.
// Paths starting with "/" bypass the prefix for endpoints outside /api/3.
func (c *Client) buildURL(path string, query url.Values) string {
	var full string

	if strings.HasPrefix(path, "/") {
		full = c.baseURL + path
	} else {
		full = c.baseURL + constants.APIPrefix + "/" + path
	}

	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	return full
}

// classifyTransportError wraps a request-level failure as a
// TransportError, flagging deadline and I/O timeouts so pollers can tell
// a slow console from a broken request.
func classifyTransportError(method, fullURL string, err error) error {
	timedOut := errors.Is(err, context.DeadlineExceeded)

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		timedOut = true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timedOut = true
	}

	return &insightvm.TransportError{
		Op:       method,
		URL:      fullURL,
		Err:      err,
		TimedOut: timedOut,
	}
}

func (c *Client) logRequest(method, fullURL string) {
	if !c.debug || c.logger == nil {
		return
	}

	// Never log headers: the Authorization header carries credentials.
	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": method,
		"url":    fullURL,
	})
}

func (c *Client) logResponse(method, fullURL string, status, size int, elapsed time.Duration) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method":   method,
		"url":      fullURL,
		"status":   status,
		"size":     size,
		"duration": elapsed.String(),
	})
}
