// Package http implements the request pipeline used by the API client:
// request building, ordered interceptors, the network call and the mapping
// of failure responses to *api.ResponseError.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = constants.AppName + "/dev"

// Client executes requests against a base URL.
type Client struct {
	baseURL        string
	httpClient     *retryablehttp.Client
	interceptors   *api.InterceptorChain
	logger         api.Logger
	debug          bool
	userAgent      string
	defaultHeaders map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug request/response logging.
func WithLogger(logger api.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithDefaultHeaders adds headers sent with every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for key, value := range headers {
			c.defaultHeaders[key] = value
		}
	}
}

// WithRetryConfig enables retries of transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets a timeout on the underlying http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithTransportLogger routes retryablehttp's own logging to logger.
func WithTransportLogger(logger retryablehttp.LeveledLogger) Option {
	return func(c *Client) {
		c.httpClient.Logger = logger
	}
}

// WithInterceptors shares an existing interceptor chain with the client.
func WithInterceptors(chain *api.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.interceptors = chain
		}
	}
}

// NewClient creates a client rooted at baseURL (e.g., "http://host/api/v1").
func NewClient(baseURL string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   httpClient,
		interceptors: api.NewInterceptorChain(),
		userAgent:    defaultUserAgent,
		defaultHeaders: map[string]string{
			"Content-Type": constants.MediaTypeJSON,
			"Accept":       constants.MediaTypeJSON,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Interceptors returns the interceptor chain of the client.
func (c *Client) Interceptors() *api.InterceptorChain {
	return c.interceptors
}

// BuildURL joins the base URL and path, enforcing a single slash between them.
func (c *Client) BuildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// Do runs a request through the pipeline. On a failure status it returns
// the response together with an *api.ResponseError. Transport errors are
// returned as they come from the transport. Every call that ends without a
// response is reported to the error interceptors.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, opts *api.RequestOptions) (*api.Response, error) {
	req, err := c.buildRequest(method, path, body, opts)
	if err != nil {
		return nil, err
	}

	req, err = c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		c.interceptors.ExecuteErrorInterceptors(ctx, req, err)

		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		})
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		c.interceptors.ExecuteErrorInterceptors(ctx, req, err)

		return nil, err
	}

	resp, err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		c.interceptors.ExecuteErrorInterceptors(ctx, req, err)

		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         req.URL,
			"status_code": resp.StatusCode,
		})
	}

	if !resp.OK() {
		return resp, parseErrorResponse(resp)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts *api.RequestOptions) (*api.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}, opts *api.RequestOptions) (*api.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}, opts *api.RequestOptions) (*api.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}, opts *api.RequestOptions) (*api.Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts *api.RequestOptions) (*api.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts)
}

func (c *Client) buildRequest(method, path string, body interface{}, opts *api.RequestOptions) (*api.Request, error) {
	target := c.BuildURL(path)

	headers := make(http.Header)
	for key, value := range c.defaultHeaders {
		headers.Set(key, value)
	}

	if c.userAgent != "" {
		headers.Set("User-Agent", c.userAgent)
	}

	if opts != nil {
		for key, value := range opts.Headers {
			headers.Set(key, value)
		}

		if len(opts.Query) > 0 {
			separator := "?"
			if strings.Contains(target, "?") {
				separator = "&"
			}

			target += separator + opts.Query.Encode()
		}
	}

	req := &api.Request{
		Method:  method,
		Path:    path,
		URL:     target,
		Headers: headers,
	}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		req.Body = payload
	}

	return req, nil
}

func (c *Client) send(ctx context.Context, req *api.Request) (*api.Response, error) {
	var rawBody interface{}
	if len(req.Body) > 0 {
		rawBody = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err //nolint:wrapcheck // transport errors reach the caller unchanged
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err //nolint:wrapcheck // transport errors reach the caller unchanged
	}

	headers := httpResp.Header.Clone()
	if headers == nil {
		headers = make(http.Header)
	}

	if httpResp.ContentLength == 0 && headers.Get("Content-Length") == "" {
		headers.Set("Content-Length", "0")
	}

	return &api.Response{
		StatusCode: httpResp.StatusCode,
		Status:     statusText(httpResp),
		Headers:    headers,
		Body:       body,
	}, nil
}

// statusText returns the reason phrase of the response, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	return text
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(contentType, constants.MediaTypeJSON) ||
		strings.Contains(contentType, constants.MediaTypeJSONAPI)
}

// parseErrorResponse maps a failure response to the structured error. The
// message is the first error's detail, then its title, then the status text.
// An undecodable JSON body is treated as text.
func parseErrorResponse(resp *api.Response) *api.ResponseError {
	if isJSONContentType(resp.Headers.Get("Content-Type")) {
		doc, err := api.ParseErrorDocument(resp.Body)
		if err == nil {
			message := resp.Status

			if first := firstError(doc.Errors); first != nil {
				switch {
				case first.Detail != "":
					message = first.Detail
				case first.Title != "":
					message = first.Title
				}
			}

			return api.NewResponseError(message, resp.StatusCode, doc.Errors)
		}
	}

	message := string(resp.Body)
	if message == "" {
		message = resp.Status
	}

	return api.NewResponseError(message, resp.StatusCode, nil)
}

func firstError(errs []api.APIError) *api.APIError {
	if len(errs) == 0 {
		return nil
	}

	return &errs[0]
}
