package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RequestOptions carries per-call options. Headers override the client
// defaults.
type RequestOptions struct {
	Headers map[string]string
	Query   url.Values
}

// Requester issues a single request through the pipeline.
type Requester interface {
	Do(ctx context.Context, method, path string, body interface{}, opts *RequestOptions) (*Response, error)
}

// HealthClient provides access to the backend health endpoint.
type HealthClient interface {
	Ping(ctx context.Context) (*PingResponse, error)
}

// Client is a dendrite-pulse API client.
type Client interface {
	Requester
	HealthClient

	// OnRequest registers a request interceptor and returns its unregister function.
	OnRequest(interceptor RequestInterceptor) func()
	// OnResponse registers a response interceptor and returns its unregister function.
	OnResponse(interceptor ResponseInterceptor) func()
	// OnError registers an error interceptor and returns its unregister function.
	OnError(interceptor ErrorInterceptor) func()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration.
//
// # Retries and timeouts
//
// The pipeline issues each request exactly once unless RetryMax is set.
// There is no default timeout: cancel the context passed to the client
// methods to bound a call.
type Config struct {
	// Endpoint is the backend origin (e.g., "http://localhost:8080").
	// pulse.New adds "http://" if no scheme is present and trims a trailing slash.
	Endpoint string
	// BasePath is prefixed to every request path. Defaults to "/api/v1".
	BasePath string
	// DefaultHeaders are sent with every request; per-call headers win.
	DefaultHeaders map[string]string

	// HTTPTimeout: optional timeout of the underlying http.Client. Zero means none.
	HTTPTimeout time.Duration
	// RetryMax: number of retries for transient failures. Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}

// Decode parses the response body into T. An empty response yields nil.
func Decode[T any](resp *Response) (*T, error) {
	if resp == nil || resp.Empty() {
		return nil, nil //nolint:nilnil // absent payload
	}

	var out T

	err := json.Unmarshal(resp.Body, &out)
	if err != nil {
		return nil, fmt.Errorf("parsing response body: %w", err)
	}

	return &out, nil
}

func request[T any](ctx context.Context, r Requester, method, path string, body interface{}, opts *RequestOptions) (*T, error) {
	resp, err := r.Do(ctx, method, path, body, opts)
	if err != nil {
		return nil, err
	}

	return Decode[T](resp)
}

// Get issues a GET request and decodes the result.
func Get[T any](ctx context.Context, r Requester, path string, opts *RequestOptions) (*T, error) {
	return request[T](ctx, r, http.MethodGet, path, nil, opts)
}

// Post issues a POST request with body and decodes the result.
func Post[T any](ctx context.Context, r Requester, path string, body interface{}, opts *RequestOptions) (*T, error) {
	return request[T](ctx, r, http.MethodPost, path, body, opts)
}

// Put issues a PUT request with body and decodes the result.
func Put[T any](ctx context.Context, r Requester, path string, body interface{}, opts *RequestOptions) (*T, error) {
	return request[T](ctx, r, http.MethodPut, path, body, opts)
}

// Patch issues a PATCH request with body and decodes the result.
func Patch[T any](ctx context.Context, r Requester, path string, body interface{}, opts *RequestOptions) (*T, error) {
	return request[T](ctx, r, http.MethodPatch, path, body, opts)
}

// Delete issues a DELETE request and decodes the result.
func Delete[T any](ctx context.Context, r Requester, path string, opts *RequestOptions) (*T, error) {
	return request[T](ctx, r, http.MethodDelete, path, nil, opts)
}
