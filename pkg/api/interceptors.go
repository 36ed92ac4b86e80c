package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Request represents an outgoing HTTP request that can be intercepted.
type Request struct {
	Method   string
	Path     string
	URL      string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an HTTP response that can be intercepted.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// Empty reports whether the response carries no payload: a 204 or an
// explicit zero Content-Length.
func (r *Response) Empty() bool {
	if r.StatusCode == http.StatusNoContent {
		return true
	}

	return r.Headers != nil && r.Headers.Get("Content-Length") == "0"
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RequestInterceptor is called before a request is sent. It returns the
// request the next interceptor (and finally the transport) will see.
type RequestInterceptor func(ctx context.Context, req *Request) (*Request, error)

// ResponseInterceptor is called after a response is received. It may return a
// replacement response.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) (*Response, error)

// ErrorInterceptor is called when a call ends without a response: a request
// interceptor, the transport or a response interceptor failed. req is the
// last request the chain produced.
type ErrorInterceptor func(ctx context.Context, req *Request, err error)

type requestEntry struct {
	fn RequestInterceptor
}

type responseEntry struct {
	fn ResponseInterceptor
}

type errorEntry struct {
	fn ErrorInterceptor
}

// InterceptorChain manages the ordered request and response interceptors of a
// single client.
type InterceptorChain struct {
	mu                   sync.RWMutex
	requestInterceptors  []*requestEntry
	responseInterceptors []*responseEntry
	errorInterceptors    []*errorEntry
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]*requestEntry, 0),
		responseInterceptors: make([]*responseEntry, 0),
	}
}

// AddRequestInterceptor appends a request interceptor and returns a function
// that removes this registration.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) func() {
	entry := &requestEntry{fn: interceptor}

	c.mu.Lock()
	c.requestInterceptors = append(c.requestInterceptors, entry)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, e := range c.requestInterceptors {
			if e == entry {
				c.requestInterceptors = append(c.requestInterceptors[:i:i], c.requestInterceptors[i+1:]...)

				return
			}
		}
	}
}

// AddResponseInterceptor appends a response interceptor and returns a
// function that removes this registration.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) func() {
	entry := &responseEntry{fn: interceptor}

	c.mu.Lock()
	c.responseInterceptors = append(c.responseInterceptors, entry)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, e := range c.responseInterceptors {
			if e == entry {
				c.responseInterceptors = append(c.responseInterceptors[:i:i], c.responseInterceptors[i+1:]...)

				return
			}
		}
	}
}

// AddErrorInterceptor appends an error interceptor and returns a function
// that removes this registration.
func (c *InterceptorChain) AddErrorInterceptor(interceptor ErrorInterceptor) func() {
	entry := &errorEntry{fn: interceptor}

	c.mu.Lock()
	c.errorInterceptors = append(c.errorInterceptors, entry)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, e := range c.errorInterceptors {
			if e == entry {
				c.errorInterceptors = append(c.errorInterceptors[:i:i], c.errorInterceptors[i+1:]...)

				return
			}
		}
	}
}

// Len returns the number of registered request and response interceptors.
func (c *InterceptorChain) Len() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.requestInterceptors), len(c.responseInterceptors)
}

// ExecuteRequestInterceptors runs the request interceptors in registration
// order, feeding each one the previous one's output. On failure it returns
// the last request produced before the failing interceptor.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) (*Request, error) {
	c.mu.RLock()
	snapshot := make([]*requestEntry, len(c.requestInterceptors))
	copy(snapshot, c.requestInterceptors)
	c.mu.RUnlock()

	for _, entry := range snapshot {
		next, err := entry.fn(ctx, req)
		if err != nil {
			return req, fmt.Errorf("request interceptor failed: %w", err)
		}

		if next != nil {
			req = next
		}
	}

	return req, nil
}

// ExecuteResponseInterceptors runs the response interceptors in registration
// order, feeding each one the previous one's output.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	c.mu.RLock()
	snapshot := make([]*responseEntry, len(c.responseInterceptors))
	copy(snapshot, c.responseInterceptors)
	c.mu.RUnlock()

	for _, entry := range snapshot {
		next, err := entry.fn(ctx, req, resp)
		if err != nil {
			return nil, fmt.Errorf("response interceptor failed: %w", err)
		}

		if next != nil {
			resp = next
		}
	}

	return resp, nil
}

// ExecuteErrorInterceptors runs the error interceptors in registration order.
func (c *InterceptorChain) ExecuteErrorInterceptors(ctx context.Context, req *Request, err error) {
	c.mu.RLock()
	snapshot := make([]*errorEntry, len(c.errorInterceptors))
	copy(snapshot, c.errorInterceptors)
	c.mu.RUnlock()

	for _, entry := range snapshot {
		entry.fn(ctx, req, err)
	}
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) (*Request, error) {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return req, nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.StatusCode >= constants.HTTPStatusBadRequest {
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return resp, nil
	}
}

// AuthenticationInterceptor adds a bearer token obtained from tokenProvider.
func AuthenticationInterceptor(tokenProvider func(context.Context) (string, error)) RequestInterceptor {
	return func(ctx context.Context, req *Request) (*Request, error) {
		token, err := tokenProvider(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get authentication token: %w", err)
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("Authorization", "Bearer "+token)

		return req, nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) (*Request, error) {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return req, nil
	}
}

// RequestIDInterceptor tags each request with a random X-Request-ID unless
// the caller already set one.
func RequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) (*Request, error) {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if req.Headers.Get(constants.HeaderRequestID) == "" {
			req.Headers.Set(constants.HeaderRequestID, uuid.NewString())
		}

		return req, nil
	}
}

// RateLimitInterceptor implements client-side rate limiting. It blocks until
// a token is available or ctx is done.
func RateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)

	return func(ctx context.Context, req *Request) (*Request, error) {
		err := limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		return req, nil
	}
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Threshold        int           // Number of failures before opening
	Timeout          time.Duration // Time before trying again
	SuccessThreshold int           // Number of successes to close
}

// CircuitBreaker tracks circuit state across calls of one client.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  constants.StatusClosed,
	}
}

// State returns the current circuit state.
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// CircuitBreakerRequestInterceptor rejects requests while the circuit is open.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *Request) (*Request, error) {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if breaker.state == constants.StatusOpen {
			if time.Since(breaker.lastFailure) <= breaker.config.Timeout {
				return nil, ErrCircuitBreakerOpen
			}

			breaker.state = constants.StatusHalfOpen
			breaker.successes = 0
		}

		return req, nil
	}
}

// CircuitBreakerResponseInterceptor updates circuit state from response codes.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if resp.StatusCode >= constants.HTTPStatusInternalServerError {
			breaker.failures++
			breaker.lastFailure = time.Now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == constants.StatusHalfOpen {
				breaker.state = constants.StatusOpen
			}

			return resp, nil
		}

		switch breaker.state {
		case constants.StatusHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = constants.StatusClosed
				breaker.failures = 0
			}
		case constants.StatusClosed:
			breaker.failures = 0
		}

		return resp, nil
	}
}
