// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"io"
	"net/http"
	"time"
)

// ClientOptions describes the round tripper chain built by NewClient.
type ClientOptions struct {
	Timeout time.Duration
	// Headers are set on every request.
	Headers map[string]string
	// Trace, when set, receives a dump of every exchange.
	Trace io.Writer
	// Breaker, when set, enables the circuit breaker.
	Breaker *BreakerSettings
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// NewClient builds an http.Client. The chain is, outermost first: headers,
// breaker, tracing, transport.
func NewClient(opts ClientOptions) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if opts.Transport != nil {
		rt = opts.Transport
	}

	if opts.Trace != nil {
		rt = &LoggingRoundTripper{Transport: rt, Writer: opts.Trace, DumpBody: true}
	}

	if opts.Breaker != nil {
		rt = NewBreakerRoundTripper(rt, *opts.Breaker)
	}

	if len(opts.Headers) > 0 {
		rt = &AppendRequestHeadersRoundTripper{Transport: rt, Headers: opts.Headers}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: rt,
	}
}
