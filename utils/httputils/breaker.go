// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures a BreakerRoundTripper.
type BreakerSettings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MaxRequests allowed while half-open.
	MaxRequests uint32
	Logger      *zap.Logger
}

// BreakerRoundTripper fails fast with [gobreaker.ErrOpenState] after a run of
// upstream failures. Transport errors and 5xx responses count as failures; a
// 5xx response is still handed back to the caller.
type BreakerRoundTripper struct {
	Transport http.RoundTripper
	cb        *gobreaker.CircuitBreaker[*http.Response]
}

// serverErrorResponse carries a 5xx response through the breaker as a failure.
type serverErrorResponse struct {
	resp *http.Response
}

func (e *serverErrorResponse) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.resp.StatusCode)
}

// NewBreakerRoundTripper wraps transport with a circuit breaker.
func NewBreakerRoundTripper(transport http.RoundTripper, s BreakerSettings) *BreakerRoundTripper {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}

	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BreakerRoundTripper{
		Transport: transport,
		cb: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        s.Name,
			MaxRequests: s.MaxRequests,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

// State exposes the breaker state.
func (t *BreakerRoundTripper) State() gobreaker.State {
	return t.cb.State()
}

// RoundTrip implements the http.RoundTripper interface.
func (t *BreakerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.Transport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverErrorResponse{resp: resp}
		}

		return resp, nil
	})

	var sr *serverErrorResponse
	if errors.As(err, &sr) {
		return sr.resp, nil
	}

	return resp, err
}
