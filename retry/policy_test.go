// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{name: "default", policy: DefaultPolicy()},
		{name: "single attempt", policy: NewPolicy(1, 0, 1)},
		{name: "zero attempts", policy: NewPolicy(0, time.Second, 2), wantErr: true},
		{name: "negative delay", policy: NewPolicy(3, -time.Second, 2), wantErr: true},
		{name: "shrinking multiplier", policy: NewPolicy(3, time.Second, 0.5), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicyDelay(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, time.Duration(0), p.Delay(1))
	assert.Equal(t, time.Second, p.Delay(2))
	assert.Equal(t, 2*time.Second, p.Delay(3))
	assert.Equal(t, time.Duration(0), p.Delay(4), "beyond max attempts")
}
