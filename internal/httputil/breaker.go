// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

// errServerResponse marks 5xx results inside the breaker so they
// count as failures while the response still reaches the caller.
var errServerResponse = errors.New("server error response")

type breakerTransport struct {
	base http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTransport wraps base with a circuit breaker that opens
// after cfg.MaxFailures consecutive transport or 5xx failures and
// probes the backend again after cfg.Cooldown. When the breaker is
// disabled base is returned unchanged.
func NewBreakerTransport(name string, base http.RoundTripper, cfg types.BreakerConfig) http.RoundTripper {
	if !cfg.Enabled {
		return base
	}
	if base == nil {
		base = http.DefaultTransport
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cfg.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// Cancellation reflects the caller, not backend health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &breakerTransport{base: base, cb: cb}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerResponse
		}
		return resp, nil
	})
	if errors.Is(err, errServerResponse) {
		return v.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
