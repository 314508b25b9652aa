// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"errors"
	"math"
	"time"
)

// Policy configures how many times a call is attempted and how long to wait
// between attempts.
type Policy struct {
	// MaxAttempts is the total number of calls, the first one included.
	// 1 disables retries.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration

	// Multiplier grows the delay after every retry. The wait before attempt n
	// (n >= 2) is InitialDelay * Multiplier^(n-2).
	Multiplier float64
}

// NewPolicy returns a policy with the given values.
func NewPolicy(maxAttempts int, initialDelay time.Duration, multiplier float64) Policy {
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		Multiplier:   multiplier,
	}
}

// DefaultPolicy makes three attempts waiting 1s and then 2s.
func DefaultPolicy() Policy {
	return NewPolicy(3, 1000*time.Millisecond, 2)
}

// Validate checks the policy values.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.New("max attempts must be greater than or equal to 1")
	}

	if p.InitialDelay < 0 {
		return errors.New("initial delay must not be negative")
	}

	if p.Multiplier < 1 {
		return errors.New("multiplier must be greater than or equal to 1")
	}

	return nil
}

// Delay returns the wait that precedes the given attempt. Attempt 1 and
// attempts beyond MaxAttempts have none.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 2 || attempt > p.MaxAttempts {
		return 0
	}

	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-2))
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(d)
}
