package pulse_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/dendrite-io/dendrite-echo/pkg/pulse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const pingBody = `{"data":{"type":"ping","id":"1","attributes":{"message":"pong"}}}`

func pingServer(t *testing.T, check func(*http.Request)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if check != nil {
			check(request)
		}

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(pingBody))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"localhost:8080", "http://localhost:8080"},
		{"http://localhost:8080/", "http://localhost:8080"},
		{"https://api.example.com", "https://api.example.com"},
		{" api.example.com/ ", "http://api.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pulse.NormalizeEndpoint(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := pulse.New(nil)
		require.ErrorIs(t, err, api.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := pulse.New(&api.Config{Endpoint: "  "})
		require.ErrorIs(t, err, api.ErrAPIEndpointRequired)
	})

	t.Run("does not modify config", func(t *testing.T) {
		t.Parallel()

		config := &api.Config{Endpoint: "localhost:8080/"}

		client, err := pulse.New(config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "localhost:8080/", config.Endpoint)
	})

	t.Run("scheme-less endpoint", func(t *testing.T) {
		t.Parallel()

		server := pingServer(t, nil)

		client, err := pulse.NewWithEndpoint(strings.TrimPrefix(server.URL, "http://"))
		require.NoError(t, err)

		ping, err := client.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "pong", ping.Data.Attributes.Message)
	})
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := pingServer(t, func(request *http.Request) {
		assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
	})

	client, err := pulse.NewWithToken(server.URL, "test-token")
	require.NoError(t, err)

	_, err = client.Ping(context.Background())
	require.NoError(t, err)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("request id", func(t *testing.T) {
		t.Parallel()

		server := pingServer(t, func(request *http.Request) {
			assert.NotEmpty(t, request.Header.Get("X-Request-ID"))
		})

		client, err := pulse.NewWithEndpoint(server.URL, pulse.WithRequestID())
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.NoError(t, err)
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		server := pingServer(t, nil)

		collector, err := api.NewMetricsCollector("test", prometheus.NewRegistry())
		require.NoError(t, err)

		client, err := pulse.NewWithEndpoint(server.URL, pulse.WithMetrics(collector))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.NoError(t, err)

		assert.InDelta(t, 1.0, testutil.ToFloat64(collector.Requests(http.MethodGet, "/ping", http.StatusOK)), 0)
	})

	t.Run("tracing", func(t *testing.T) {
		t.Parallel()

		server := pingServer(t, func(request *http.Request) {
			assert.NotEmpty(t, request.Header.Get("Traceparent"))
		})

		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

		client, err := pulse.NewWithEndpoint(server.URL,
			pulse.WithTracing(provider.Tracer("test"), propagation.TraceContext{}))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "HTTP GET", spans[0].Name())
	})

	t.Run("tracing ends the span of a call without response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

		client, err := pulse.NewWithEndpoint(endpoint,
			pulse.WithTracing(provider.Tracer("test"), propagation.TraceContext{}))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.Error(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, err.Error(), spans[0].Status().Description)
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
	})

	t.Run("tracing ends the span when a later request interceptor fails", func(t *testing.T) {
		t.Parallel()

		server := pingServer(t, func(*http.Request) {
			t.Error("request must not be sent")
		})

		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

		client, err := pulse.NewWithEndpoint(server.URL,
			pulse.WithTracing(provider.Tracer("test"), propagation.TraceContext{}))
		require.NoError(t, err)

		client.OnRequest(func(context.Context, *api.Request) (*api.Request, error) {
			return nil, api.ErrUnexpected
		})

		_, err = client.Ping(context.Background())
		require.ErrorIs(t, err, api.ErrUnexpected)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("metrics count calls without response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		collector, err := api.NewMetricsCollector("test", prometheus.NewRegistry())
		require.NoError(t, err)

		client, err := pulse.NewWithEndpoint(endpoint, pulse.WithMetrics(collector))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.Error(t, err)

		assert.InDelta(t, 1.0, testutil.ToFloat64(collector.FailedRequests(http.MethodGet, "/ping")), 0)
		assert.InDelta(t, 1.0, testutil.ToFloat64(collector.Errors(http.MethodGet, "/ping")), 0)
	})

	t.Run("circuit breaker", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		breaker := api.NewCircuitBreaker(&api.CircuitBreakerConfig{Threshold: 1, Timeout: time.Hour, SuccessThreshold: 1})

		client, err := pulse.NewWithEndpoint(server.URL, pulse.WithCircuitBreaker(breaker))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		assert.True(t, api.IsServerError(err))

		_, err = client.Ping(context.Background())
		require.ErrorIs(t, err, api.ErrCircuitBreakerOpen)
	})

	t.Run("rate limit and logging", func(t *testing.T) {
		t.Parallel()

		server := pingServer(t, nil)
		logger := &recordingLogger{}

		client, err := pulse.NewWithEndpoint(server.URL, pulse.WithRateLimit(100), pulse.WithLogging(logger))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"API Request", "API Response"}, logger.messages)
	})
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.messages = append(l.messages, msg) }
