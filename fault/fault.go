// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault classifies the errors produced by the provider adapters so the
// HTTP surface can map them to status codes without looking at messages.
package fault

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the category of an adapter error.
type Kind int

const (
	// Provider is a network or upstream failure. It is the zero value so that
	// unclassified errors end up here.
	Provider Kind = iota
	// Validation means a required input was missing.
	Validation
	// NotFound means the provider answered but had no match.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	default:
		return "provider"
	}
}

// Error is the error type returned across the adapter boundary.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status, 0 when there was none.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf builds a Validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// ProviderErr wraps err as a Provider error without an upstream status.
func ProviderErr(message string, err error) *Error {
	return &Error{Kind: Provider, Message: message, Err: err}
}

// FromStatus classifies a non-2xx provider response. body, when present, is
// appended to the message trimmed to a single line.
func FromStatus(provider string, statusCode int, body string) *Error {
	var msg string

	switch statusCode {
	case http.StatusTooManyRequests:
		msg = "rate limit reached"
	case http.StatusUnauthorized, http.StatusForbidden:
		msg = "access denied or quota exceeded"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		msg = "invalid request"
	case http.StatusNotFound:
		msg = "resource not found"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		msg = "service unavailable"
	default:
		msg = "unexpected response"
	}

	msg = fmt.Sprintf("%s %s (status %d)", provider, msg, statusCode)
	if body = firstLine(body); body != "" {
		msg += ": " + body
	}

	return &Error{Kind: Provider, Message: msg, Status: statusCode}
}

func firstLine(s string) string {
	const maxChars = 256

	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	if len(s) > maxChars {
		s = s[:maxChars] + "…"
	}

	return s
}

// KindOf returns the kind of err. Errors that are not *Error are Provider.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Provider
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}

	return 0
}

// IsRetryable reports whether err carries a server-error status (>= 500).
func IsRetryable(err error) bool {
	return StatusCode(err) >= http.StatusInternalServerError
}
