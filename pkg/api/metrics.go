package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metadataStartTime = "start_time"
	metadataRecorded  = "metrics_recorded"

	// CodeError labels calls that ended without a response.
	CodeError = "error"
)

// MetricsCollector records request counts and latencies in Prometheus
// collectors, labelled by method, path and status code.
type MetricsCollector struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsCollector creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetricsCollector(namespace string, reg prometheus.Registerer) (*MetricsCollector, error) {
	collector := &MetricsCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Total API requests issued by the client.",
		}, []string{"method", "path", "code"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "errors_total",
			Help:      "API responses with a failure status.",
		}, []string{"method", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of API requests including interceptors.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	if reg == nil {
		return collector, nil
	}

	for _, c := range []prometheus.Collector{collector.requests, collector.errors, collector.latency} {
		err := reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("registering metrics collector: %w", err)
		}
	}

	return collector, nil
}

// Requests returns the request counter for method, path and status code.
func (m *MetricsCollector) Requests(method, path string, code int) prometheus.Counter {
	return m.requests.WithLabelValues(method, path, strconv.Itoa(code))
}

// Errors returns the failure counter for method and path.
func (m *MetricsCollector) Errors(method, path string) prometheus.Counter {
	return m.errors.WithLabelValues(method, path)
}

// MetricsRequestInterceptor records the request start time.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) (*Request, error) {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataStartTime] = time.Now()

		return req, nil
	}
}

// MetricsResponseInterceptor records response metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
		collector.Requests(req.Method, req.Path, resp.StatusCode).Inc()

		if !resp.OK() {
			collector.Errors(req.Method, req.Path).Inc()
		}

		collector.observe(req)

		return resp, nil
	}
}

// MetricsErrorInterceptor counts calls that ended without a response under
// the "error" code. Calls already counted by the response interceptor are
// skipped.
func MetricsErrorInterceptor(collector *MetricsCollector) ErrorInterceptor {
	return func(ctx context.Context, req *Request, err error) {
		if req == nil {
			return
		}

		if recorded, _ := req.Metadata[metadataRecorded].(bool); recorded {
			return
		}

		collector.requests.WithLabelValues(req.Method, req.Path, CodeError).Inc()
		collector.Errors(req.Method, req.Path).Inc()
		collector.observe(req)
	}
}

// FailedRequests returns the counter of calls that ended without a response.
func (m *MetricsCollector) FailedRequests(method, path string) prometheus.Counter {
	return m.requests.WithLabelValues(method, path, CodeError)
}

func (m *MetricsCollector) observe(req *Request) {
	if req.Metadata == nil {
		req.Metadata = make(map[string]interface{})
	}

	req.Metadata[metadataRecorded] = true

	if startTime, ok := req.Metadata[metadataStartTime].(time.Time); ok {
		m.latency.WithLabelValues(req.Method, req.Path).Observe(time.Since(startTime).Seconds())
	}
}
