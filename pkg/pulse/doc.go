// Package pulse provides the entry point for constructing a dendrite-pulse
// API client that implements the api.Client interface.
//
// It layers configuration, the HTTP request pipeline and the optional
// interceptors (request IDs, metrics, tracing, rate limiting, circuit
// breaking) on top of the types defined in the api package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/dendrite-io/dendrite-echo/pkg/api"
//	  "github.com/dendrite-io/dendrite-echo/pkg/pulse"
//	)
//
//	func example() {
//	  cli, err := pulse.New(&api.Config{Endpoint: "localhost:8080"})
//	  if err != nil { log.Fatal(err) }
//
//	  ping, err := cli.Ping(context.Background())
//	  if err != nil {
//	    if respErr, ok := api.AsResponseError(err); ok {
//	      log.Fatalf("API returned %d: %s", respErr.StatusCode, respErr.Message)
//	    }
//	    log.Fatal(err) // transport failure
//	  }
//	  log.Println(ping.Data.Attributes.Message)
//	}
//
// Endpoint normalization
//
// A scheme-less endpoint gets "http://" and a trailing slash is dropped. The
// base path defaults to "/api/v1".
//
// Interceptors
//
// Options register interceptors at construction time; callers can add their
// own later with OnRequest and OnResponse. Interceptors run in registration
// order, so options apply before anything registered afterwards.
//
//	reg := prometheus.NewRegistry()
//	metrics, _ := api.NewMetricsCollector("dendrite_echo", reg)
//	cli, _ := pulse.New(cfg, pulse.WithRequestID(), pulse.WithMetrics(metrics))
package pulse
