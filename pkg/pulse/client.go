package pulse

import (
	"context"
	"fmt"
	"strings"

	"github.com/dendrite-io/dendrite-echo/internal/client"
	"github.com/dendrite-io/dendrite-echo/internal/http"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type settings struct {
	httpOpts []http.Option
	register []func(api.Client)
}

// Option customizes a client built by New.
type Option func(*settings)

// WithRequestID tags every request with an X-Request-ID header.
func WithRequestID() Option {
	return func(s *settings) {
		s.register = append(s.register, func(c api.Client) {
			c.OnRequest(api.RequestIDInterceptor())
		})
	}
}

// WithToken sends a static bearer token.
func WithToken(token string) Option {
	return func(s *settings) {
		s.register = append(s.register, func(c api.Client) {
			c.OnRequest(api.AuthenticationInterceptor(func(context.Context) (string, error) {
				return token, nil
			}))
		})
	}
}

// WithRateLimit limits the client to rps requests per second.
func WithRateLimit(rps int) Option {
	return func(s *settings) {
		if rps <= 0 {
			return
		}

		s.register = append(s.register, func(c api.Client) {
			c.OnRequest(api.RateLimitInterceptor(rps))
		})
	}
}

// WithCircuitBreaker rejects requests after repeated server errors.
func WithCircuitBreaker(breaker *api.CircuitBreaker) Option {
	return func(s *settings) {
		s.register = append(s.register, func(c api.Client) {
			c.OnRequest(api.CircuitBreakerRequestInterceptor(breaker))
			c.OnResponse(api.CircuitBreakerResponseInterceptor(breaker))
		})
	}
}

// WithMetrics records request counts and latency in collector, including
// calls that fail without a response.
func WithMetrics(collector *api.MetricsCollector) Option {
	return func(s *settings) {
		s.register = append(s.register, func(c api.Client) {
			c.OnRequest(api.MetricsRequestInterceptor(collector))
			c.OnResponse(api.MetricsResponseInterceptor(collector))
			c.OnError(api.MetricsErrorInterceptor(collector))
		})
	}
}

// WithTracing starts a client span per request and propagates its context.
func WithTracing(tracer trace.Tracer, propagator propagation.TextMapPropagator) Option {
	return func(s *settings) {
		s.register = append(s.register, func(c api.Client) {
			onRequest, onResponse, onError := api.TracingInterceptors(tracer, propagator)
			c.OnRequest(onRequest)
			c.OnResponse(onResponse)
			c.OnError(onError)
		})
	}
}

// WithLogging logs every request and response through logger.
func WithLogging(logger api.Logger) Option {
	return func(s *settings) {
		s.register = append(s.register, func(c api.Client) {
			c.OnRequest(api.LoggingInterceptor(logger))
			c.OnResponse(api.LoggingResponseInterceptor(logger))
		})
	}
}

// WithTransportLogger routes the retrying transport's logs to logger.
func WithTransportLogger(logger retryablehttp.LeveledLogger) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, http.WithTransportLogger(logger))
	}
}

// NormalizeEndpoint adds "http://" to a scheme-less endpoint and drops a
// trailing slash.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	return endpoint
}

// New creates a new dendrite-pulse API client. config is not modified.
func New(config *api.Config, opts ...Option) (api.Client, error) {
	if config == nil {
		return nil, api.ErrConfigRequired
	}

	if strings.TrimSpace(config.Endpoint) == "" {
		return nil, api.ErrAPIEndpointRequired
	}

	normalized := *config
	normalized.Endpoint = NormalizeEndpoint(config.Endpoint)

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	c, err := client.New(&normalized, s.httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	for _, register := range s.register {
		register(c)
	}

	return c, nil
}

// NewWithEndpoint creates a client with default settings.
func NewWithEndpoint(endpoint string, opts ...Option) (api.Client, error) {
	return New(&api.Config{Endpoint: endpoint}, opts...)
}

// NewWithToken creates a client that authenticates with a static bearer token.
func NewWithToken(endpoint, token string, opts ...Option) (api.Client, error) {
	return New(&api.Config{Endpoint: endpoint}, append([]Option{WithToken(token)}, opts...)...)
}
