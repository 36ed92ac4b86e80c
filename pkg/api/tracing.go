package api

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const metadataSpan = "span"

// TracingInterceptors returns the interceptors that wrap each call in a
// client span and propagate its context through the request headers. The
// span ends in the response interceptor, or in the error interceptor when
// the call produced no response.
func TracingInterceptors(tracer trace.Tracer, propagator propagation.TextMapPropagator) (RequestInterceptor, ResponseInterceptor, ErrorInterceptor) {
	onRequest := func(ctx context.Context, req *Request) (*Request, error) {
		spanCtx, span := tracer.Start(ctx, "HTTP "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.full", req.URL),
			),
		)

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if propagator != nil {
			propagator.Inject(spanCtx, propagation.HeaderCarrier(req.Headers))
		}

		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataSpan] = span

		return req, nil
	}

	onResponse := func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
		span, ok := takeSpan(req)
		if !ok {
			return resp, nil
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

		if !resp.OK() {
			span.SetStatus(codes.Error, resp.Status)
		}

		span.End()

		return resp, nil
	}

	onError := func(ctx context.Context, req *Request, err error) {
		span, ok := takeSpan(req)
		if !ok {
			return
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
	}

	return onRequest, onResponse, onError
}

// takeSpan removes the span from the request so it is ended only once.
func takeSpan(req *Request) (trace.Span, bool) {
	if req == nil || req.Metadata == nil {
		return nil, false
	}

	span, ok := req.Metadata[metadataSpan].(trace.Span)
	if ok {
		delete(req.Metadata, metadataSpan)
	}

	return span, ok
}
