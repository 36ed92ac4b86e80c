package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/dendrite-io/dendrite-echo/pkg/api"
)

// UnexpectedErrorMessage is shown when a call fails without a usable message.
const UnexpectedErrorMessage = "An unexpected error occurred"

// Fetcher performs an API call.
type Fetcher[T any] func(ctx context.Context) (*T, error)

// CallState is a snapshot of a Call.
type CallState[T any] struct {
	Data    *T
	Error   string
	Loading bool
}

// CallOptions configures a Call.
type CallOptions struct {
	// Immediate executes the call before NewCall returns.
	Immediate bool
}

// Call tracks the data, error and loading state of an API call.
type Call[T any] struct {
	fetcher Fetcher[T]

	mu    sync.RWMutex
	state CallState[T]
}

// NewCall wraps fetcher.
func NewCall[T any](ctx context.Context, fetcher Fetcher[T], opts CallOptions) *Call[T] {
	call := &Call[T]{fetcher: fetcher}

	if opts.Immediate {
		call.Execute(ctx)
	}

	return call
}

// Execute runs the fetcher. On success the data is stored and returned; on
// failure the data is cleared, the error message stored and nil returned.
func (c *Call[T]) Execute(ctx context.Context) *T {
	c.mu.Lock()
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	data, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Loading = false

	if err != nil {
		c.state.Data = nil
		c.state.Error = errorMessage(err)

		return nil
	}

	c.state.Data = data

	return data
}

// State returns a snapshot of the call.
func (c *Call[T]) State() CallState[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Data returns the last successful result.
func (c *Call[T]) Data() *T {
	return c.State().Data
}

// Err returns the error message of the last execution, if any.
func (c *Call[T]) Err() string {
	return c.State().Error
}

// Loading reports whether an execution is in progress.
func (c *Call[T]) Loading() bool {
	return c.State().Loading
}

// Reset clears the state.
func (c *Call[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = CallState[T]{}
}

func (c *Call[T]) fetch(ctx context.Context) (data *T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			data, err = nil, api.ErrUnexpected
		}
	}()

	return c.fetcher(ctx)
}

func errorMessage(err error) string {
	if respErr, ok := api.AsResponseError(err); ok && respErr.Message != "" {
		return respErr.Message
	}

	if msg := err.Error(); msg != "" && !errors.Is(err, api.ErrUnexpected) {
		return msg
	}

	return UnexpectedErrorMessage
}
