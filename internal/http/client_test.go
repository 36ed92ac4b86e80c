package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	echohttp "github.com/dendrite-io/dendrite-echo/internal/http"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/ping", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"data":{"type":"ping","id":"1","attributes":{"message":"pong"}}}`))
		})

		client := echohttp.NewClient(server.URL + "/api/v1")

		resp, err := client.Get(context.Background(), "/ping", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OK", resp.Status)

		ping, err := api.Decode[api.PingResponse](resp)
		require.NoError(t, err)
		require.NotNil(t, ping)
		assert.Equal(t, "pong", ping.Data.Attributes.Message)
	})

	t.Run("path without leading slash and trailing slash on base", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/ping", request.URL.Path)
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL + "/api/v1/")
		assert.Equal(t, server.URL+"/api/v1/ping", client.BuildURL("ping"))

		_, err := client.Get(context.Background(), "ping", nil)
		require.NoError(t, err)
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL)

		_, err := client.Get(context.Background(), "/items", &api.RequestOptions{
			Query: url.Values{"page": []string{"2"}},
		})
		require.NoError(t, err)
	})

	t.Run("caller headers override defaults", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/vnd.api+json", request.Header.Get("Accept"))
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Equal(t, "team", request.Header.Get("X-Tenant"))
			assert.Equal(t, "custom-agent", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL,
			echohttp.WithUserAgent("custom-agent"),
			echohttp.WithDefaultHeaders(map[string]string{"X-Tenant": "team"}),
		)

		_, err := client.Get(context.Background(), "/x", &api.RequestOptions{
			Headers: map[string]string{"Accept": "application/vnd.api+json"},
		})
		require.NoError(t, err)
	})

	t.Run("body serialized before interceptors", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)

			body, err := io.ReadAll(request.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"name":"echo"}`, string(body))
			writer.WriteHeader(http.StatusCreated)
		})

		client := echohttp.NewClient(server.URL)

		var seen []byte

		client.Interceptors().AddRequestInterceptor(func(ctx context.Context, req *api.Request) (*api.Request, error) {
			seen = append([]byte(nil), req.Body...)

			return req, nil
		})

		resp, err := client.Post(context.Background(), "/things", map[string]string{"name": "echo"}, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"name":"echo"}`, string(seen))
	})

	t.Run("methods", func(t *testing.T) {
		t.Parallel()

		var methods []string

		var mu sync.Mutex

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			mu.Lock()
			methods = append(methods, request.Method)
			mu.Unlock()
			writer.WriteHeader(http.StatusNoContent)
		})

		client := echohttp.NewClient(server.URL)
		ctx := context.Background()

		_, err := client.Put(ctx, "/a", map[string]int{"n": 1}, nil)
		require.NoError(t, err)
		_, err = client.Patch(ctx, "/a", map[string]int{"n": 2}, nil)
		require.NoError(t, err)
		_, err = client.Delete(ctx, "/a", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{http.MethodPut, http.MethodPatch, http.MethodDelete}, methods)
	})

	t.Run("debug logging", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})

		logger := &MockLogger{}
		client := echohttp.NewClient(server.URL, echohttp.WithLogger(logger), echohttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/ping", nil)
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	t.Run("run in registration order", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "a,b", request.Header.Get("X-Order"))
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL)

		var order []string

		client.Interceptors().AddRequestInterceptor(func(ctx context.Context, req *api.Request) (*api.Request, error) {
			order = append(order, "req-a")
			req.Headers.Set("X-Order", "a")

			return req, nil
		})
		client.Interceptors().AddRequestInterceptor(func(ctx context.Context, req *api.Request) (*api.Request, error) {
			order = append(order, "req-b")
			req.Headers.Set("X-Order", req.Headers.Get("X-Order")+",b")

			return req, nil
		})
		client.Interceptors().AddResponseInterceptor(func(ctx context.Context, req *api.Request, resp *api.Response) (*api.Response, error) {
			order = append(order, "resp-a")

			return resp, nil
		})
		client.Interceptors().AddResponseInterceptor(func(ctx context.Context, req *api.Request, resp *api.Response) (*api.Response, error) {
			order = append(order, "resp-b")

			return resp, nil
		})

		_, err := client.Get(context.Background(), "/x", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"req-a", "req-b", "resp-a", "resp-b"}, order)
	})

	t.Run("unregistered interceptor does not run", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL)

		var calls int32

		remove := client.Interceptors().AddRequestInterceptor(func(ctx context.Context, req *api.Request) (*api.Request, error) {
			atomic.AddInt32(&calls, 1)

			return req, nil
		})

		_, err := client.Get(context.Background(), "/x", nil)
		require.NoError(t, err)

		remove()

		_, err = client.Get(context.Background(), "/x", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("response interceptor can replace the response", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL)
		client.Interceptors().AddResponseInterceptor(func(ctx context.Context, req *api.Request, resp *api.Response) (*api.Response, error) {
			return &api.Response{
				StatusCode: http.StatusTeapot,
				Status:     "I'm a teapot",
				Headers:    http.Header{},
			}, nil
		})

		resp, err := client.Get(context.Background(), "/x", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, "I'm a teapot", err.Error())
	})

	t.Run("request interceptor error aborts the call", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&hits, 1)
		})

		errBoom := errors.New("boom")
		client := echohttp.NewClient(server.URL)
		client.Interceptors().AddRequestInterceptor(func(ctx context.Context, req *api.Request) (*api.Request, error) {
			return nil, errBoom
		})

		_, err := client.Get(context.Background(), "/x", nil)
		require.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "request interceptor failed")
		assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	})

	t.Run("shared chain", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "yes", request.Header.Get("X-Shared"))
			writer.WriteHeader(http.StatusOK)
		})

		chain := api.NewInterceptorChain()
		chain.AddRequestInterceptor(api.HeaderInterceptor(map[string]string{"X-Shared": "yes"}))

		client := echohttp.NewClient(server.URL, echohttp.WithInterceptors(chain))
		assert.Same(t, chain, client.Interceptors())

		_, err := client.Get(context.Background(), "/x", nil)
		require.NoError(t, err)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantErrors  int
	}{
		{
			name:        "json error with title",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"errors":[{"status":"500","title":"Internal Server Error"}]}`,
			wantMessage: "Internal Server Error",
			wantErrors:  1,
		},
		{
			name:        "json error prefers detail",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json; charset=utf-8",
			body:        `{"errors":[{"title":"Invalid","detail":"name is required"},{"title":"Other"}]}`,
			wantMessage: "name is required",
			wantErrors:  2,
		},
		{
			name:        "empty detail counts as absent",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"errors":[{"detail":"","title":"T"}]}`,
			wantMessage: "T",
			wantErrors:  1,
		},
		{
			name:        "empty detail and title fall back to status text",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"errors":[{"detail":"","title":""}]}`,
			wantMessage: "Conflict",
			wantErrors:  1,
		},
		{
			name:        "json api media type",
			status:      http.StatusNotFound,
			contentType: "application/vnd.api+json",
			body:        `{"errors":[{"code":"not_found","title":"Missing"}]}`,
			wantMessage: "Missing",
			wantErrors:  1,
		},
		{
			name:        "json without errors falls back to status text",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{}`,
			wantMessage: "Bad Request",
		},
		{
			name:        "malformed json falls back to text",
			status:      http.StatusBadGateway,
			contentType: "application/json",
			body:        `upstream down`,
			wantMessage: "upstream down",
		},
		{
			name:        "plain text body",
			status:      http.StatusServiceUnavailable,
			contentType: "text/plain",
			body:        "maintenance",
			wantMessage: "maintenance",
		},
		{
			name:        "empty body falls back to status text",
			status:      http.StatusForbidden,
			contentType: "text/plain",
			wantMessage: "Forbidden",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
				writer.Header().Set("Content-Type", tt.contentType)
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			})

			client := echohttp.NewClient(server.URL)

			resp, err := client.Get(context.Background(), "/x", nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)

			respErr, ok := api.AsResponseError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMessage, respErr.Message)
			assert.Equal(t, tt.status, respErr.StatusCode)
			assert.Len(t, respErr.Errors, tt.wantErrors)
		})
	}
}

func TestClient_EmptyResponses(t *testing.T) {
	t.Parallel()

	t.Run("no content", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		})

		client := echohttp.NewClient(server.URL)

		result, err := api.Delete[api.PingResponse](context.Background(), client, "/x", nil)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("zero content length", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.Header().Set("Content-Length", "0")
			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL)

		result, err := api.Get[api.PingResponse](context.Background(), client, "/x", nil)
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestClient_TransportErrors(t *testing.T) {
	t.Parallel()

	t.Run("connection refused is returned unwrapped", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		target := server.URL
		server.Close()

		client := echohttp.NewClient(target)

		_, err := client.Get(context.Background(), "/ping", nil)
		require.Error(t, err)

		_, isResponseError := api.AsResponseError(err)
		assert.False(t, isResponseError)

		var urlErr *url.Error
		assert.ErrorAs(t, err, &urlErr)
	})

	t.Run("error interceptors see calls without response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		target := server.URL
		server.Close()

		client := echohttp.NewClient(target)

		var seen []error

		client.Interceptors().AddRequestInterceptor(func(ctx context.Context, req *api.Request) (*api.Request, error) {
			req.Metadata = map[string]interface{}{"marker": true}

			return req, nil
		})
		client.Interceptors().AddErrorInterceptor(func(ctx context.Context, req *api.Request, err error) {
			assert.Equal(t, true, req.Metadata["marker"])
			seen = append(seen, err)
		})

		_, err := client.Get(context.Background(), "/ping", nil)
		require.Error(t, err)
		require.Len(t, seen, 1)
		assert.Equal(t, err, seen[0])
	})

	t.Run("error interceptors see failing interceptors", func(t *testing.T) {
		t.Parallel()

		errStop := errors.New("stop")

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
		})

		var seen int

		failing := echohttp.NewClient(server.URL)
		failing.Interceptors().AddResponseInterceptor(func(ctx context.Context, req *api.Request, resp *api.Response) (*api.Response, error) {
			return nil, errStop
		})
		failing.Interceptors().AddErrorInterceptor(func(ctx context.Context, req *api.Request, err error) {
			require.NotNil(t, req)
			seen++
		})

		_, err := failing.Get(context.Background(), "/x", nil)
		require.ErrorIs(t, err, errStop)
		assert.Equal(t, 1, seen)

		plain := echohttp.NewClient(server.URL)
		plain.Interceptors().AddErrorInterceptor(func(ctx context.Context, req *api.Request, err error) {
			t.Error("failure status must go through the response interceptors only")
		})

		_, err = plain.Get(context.Background(), "/x", nil)
		assert.True(t, api.IsServerError(err))
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			<-request.Context().Done()
		})

		client := echohttp.NewClient(server.URL)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, "/slow", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_Retries(t *testing.T) {
	t.Parallel()

	t.Run("no retries by default", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&hits, 1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		})

		client := echohttp.NewClient(server.URL)

		_, err := client.Get(context.Background(), "/x", nil)
		require.Error(t, err)
		assert.True(t, api.IsServerError(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("retries when configured", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&hits, 1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			writer.WriteHeader(http.StatusOK)
		})

		client := echohttp.NewClient(server.URL,
			echohttp.WithRetryConfig(3, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/x", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	})
}
