package ui_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dendrite-io/dendrite-echo/internal/ui"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pong() *api.PingResponse {
	resp := &api.PingResponse{}
	resp.Data.Type = api.ResourceTypePing
	resp.Data.Attributes.Message = "pong"

	return resp
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var loadingDuringFetch bool

		var call *ui.Call[api.PingResponse]

		call = ui.NewCall(ctx, func(context.Context) (*api.PingResponse, error) {
			loadingDuringFetch = call.Loading()

			return pong(), nil
		}, ui.CallOptions{})

		assert.Nil(t, call.Data())

		data := call.Execute(ctx)
		require.NotNil(t, data)
		assert.True(t, loadingDuringFetch)
		assert.Equal(t, "pong", call.Data().Data.Attributes.Message)
		assert.Empty(t, call.Err())
		assert.False(t, call.Loading())
	})

	tests := []struct {
		name    string
		fetcher ui.Fetcher[api.PingResponse]
		want    string
	}{
		{
			name: "structured error",
			fetcher: func(context.Context) (*api.PingResponse, error) {
				return nil, api.NewResponseError("Internal Server Error", http.StatusInternalServerError, nil)
			},
			want: "Internal Server Error",
		},
		{
			name: "plain error",
			fetcher: func(context.Context) (*api.PingResponse, error) {
				return nil, errors.New("connection refused")
			},
			want: "connection refused",
		},
		{
			name: "panic",
			fetcher: func(context.Context) (*api.PingResponse, error) {
				panic("boom")
			},
			want: ui.UnexpectedErrorMessage,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			call := ui.NewCall(ctx, tt.fetcher, ui.CallOptions{})

			assert.Nil(t, call.Execute(ctx))
			assert.Equal(t, tt.want, call.Err())
			assert.Nil(t, call.Data())
			assert.False(t, call.Loading())
		})
	}

	t.Run("error clears previous data and success clears error", func(t *testing.T) {
		t.Parallel()

		fail := true
		call := ui.NewCall(ctx, func(context.Context) (*api.PingResponse, error) {
			if fail {
				return nil, errors.New("down")
			}

			return pong(), nil
		}, ui.CallOptions{})

		call.Execute(ctx)
		assert.Equal(t, "down", call.Err())

		fail = false
		call.Execute(ctx)
		assert.Empty(t, call.Err())
		assert.NotNil(t, call.Data())

		fail = true
		call.Execute(ctx)
		assert.Nil(t, call.Data())
	})

	t.Run("immediate and reset", func(t *testing.T) {
		t.Parallel()

		calls := 0
		call := ui.NewCall(ctx, func(context.Context) (*api.PingResponse, error) {
			calls++

			return pong(), nil
		}, ui.CallOptions{Immediate: true})

		assert.Equal(t, 1, calls)
		assert.NotNil(t, call.Data())

		call.Reset()
		assert.Equal(t, ui.CallState[api.PingResponse]{}, call.State())
	})
}
