package client

import (
	"context"
	"strings"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/internal/http"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
)

var _ api.Client = (*Client)(nil)

// Client implements the api.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     api.Logger
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *api.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if len(config.DefaultHeaders) > 0 {
		httpOpts = append(httpOpts, http.WithDefaultHeaders(config.DefaultHeaders))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// BaseURL joins endpoint and base path. An empty base path means the default
// "/api/v1"; "/" means none.
func BaseURL(endpoint, basePath string) string {
	if basePath == "" {
		basePath = constants.DefaultBasePath
	}

	basePath = strings.Trim(basePath, "/")
	endpoint = strings.TrimSuffix(endpoint, "/")

	if basePath == "" {
		return endpoint
	}

	return endpoint + "/" + basePath
}

// New creates a new API client. Extra options are applied after the ones
// derived from config.
func New(config *api.Config, opts ...http.Option) (*Client, error) {
	if config == nil {
		return nil, api.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, api.ErrAPIEndpointRequired
	}

	baseURL := BaseURL(config.Endpoint, config.BasePath)
	httpOpts := append(createHTTPClientOptions(config), opts...)

	return &Client{
		httpClient: http.NewClient(baseURL, httpOpts...),
		baseURL:    baseURL,
		logger:     config.Logger,
	}, nil
}

// BaseURL returns the URL every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do implements api.Requester.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, opts *api.RequestOptions) (*api.Response, error) {
	return c.httpClient.Do(ctx, method, path, body, opts)
}

// OnRequest implements api.Client.OnRequest.
func (c *Client) OnRequest(interceptor api.RequestInterceptor) func() {
	return c.httpClient.Interceptors().AddRequestInterceptor(interceptor)
}

// OnResponse implements api.Client.OnResponse.
func (c *Client) OnResponse(interceptor api.ResponseInterceptor) func() {
	return c.httpClient.Interceptors().AddResponseInterceptor(interceptor)
}

// OnError implements api.Client.OnError.
func (c *Client) OnError(interceptor api.ErrorInterceptor) func() {
	return c.httpClient.Interceptors().AddErrorInterceptor(interceptor)
}

// Interceptors returns the interceptor chain of the client.
func (c *Client) Interceptors() *api.InterceptorChain {
	return c.httpClient.Interceptors()
}

// Ping implements api.HealthClient.Ping.
func (c *Client) Ping(ctx context.Context) (*api.PingResponse, error) {
	ping, err := api.Get[api.PingResponse](ctx, c, constants.PingPath, nil)
	if err != nil {
		return nil, err
	}

	if ping == nil {
		return nil, api.ErrNoContent
	}

	return ping, nil
}
