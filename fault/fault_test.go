// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "service unavailable",
			err:  FromStatus("positionstack", http.StatusServiceUnavailable, ""),
			want: true,
		},
		{
			name: "internal server error wrapped",
			err:  fmt.Errorf("forward geocoding: %w", FromStatus("positionstack", http.StatusInternalServerError, "")),
			want: true,
		},
		{
			name: "client error",
			err:  FromStatus("positionstack", http.StatusUnauthorized, ""),
			want: false,
		},
		{
			name: "rate limited",
			err:  FromStatus("openai", http.StatusTooManyRequests, ""),
			want: false,
		},
		{
			name: "network error without status",
			err:  ProviderErr("request failed", errors.New("connection refused")),
			want: false,
		},
		{
			name: "validation",
			err:  Validationf("location is required"),
			want: false,
		},
		{
			name: "plain error",
			err:  context.DeadlineExceeded,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Validation, KindOf(Validationf("missing %s", "x")))
	assert.Equal(t, NotFound, KindOf(fmt.Errorf("wrapped: %w", NotFoundf("nothing"))))
	assert.Equal(t, Provider, KindOf(FromStatus("google_maps", http.StatusBadGateway, "")))
	assert.Equal(t, Provider, KindOf(errors.New("boom")))
}

func TestFromStatusMessage(t *testing.T) {
	err := FromStatus("positionstack", http.StatusServiceUnavailable, "  upstream down\nstack trace  ")

	assert.Equal(t, "positionstack service unavailable (status 503): upstream down", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := ProviderErr("geocoding request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "geocoding request failed: dial tcp: refused", err.Error())
	assert.Equal(t, 0, StatusCode(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", Validation.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "provider", Provider.String())
}
