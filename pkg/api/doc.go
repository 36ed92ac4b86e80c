// Package api provides types, interfaces, and helpers for working with the
// dendrite-pulse API.
//
// # Overview
//
// The api package defines the JSON:API document types (Resource, Document,
// CollectionDocument), the structured error returned for failure responses
// (ResponseError), the interceptor chain of the request pipeline and the
// client interfaces. A concrete client is provided by the pulse package.
//
// Typed calls
//
//	ping, err := api.Get[api.PingResponse](ctx, cli, "/ping", nil)
//
// A nil result with a nil error means the server answered 204 or with an
// explicit zero Content-Length.
//
// # Errors
//
// A failure status yields *ResponseError; its Message is the first error's
// detail, then its title, then the HTTP status text. Non-JSON bodies use the
// body text. Transport failures are returned unchanged, so a caller can tell
// them apart with AsResponseError:
//
//	if respErr, ok := api.AsResponseError(err); ok && respErr.StatusCode == 404 {
//	  // not found
//	}
//
// # Interceptors
//
// Request interceptors run in registration order before the network call and
// response interceptors in registration order after it. Each registration
// returns a function that removes exactly that registration.
package api
