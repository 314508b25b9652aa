// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package retry runs an idempotent outbound call with bounded retries and
// exponential backoff.
//
// Only failures that carry a server-error status (see [fault.IsRetryable]) are
// retried. Any other failure is returned as soon as it happens, and when the
// attempts run out the last failure is returned unchanged.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jcodagnone/geofacts/fault"
	"go.uber.org/zap"
)

// Classifier decides whether a failed attempt may be retried.
type Classifier func(error) bool

type options struct {
	logger    *zap.Logger
	timer     backoff.Timer
	retryable Classifier
	name      string
}

// Option customizes a single Do call.
type Option func(*options)

// WithLogger sets the logger used to report retry decisions.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimer replaces the timer that realizes the waits. Tests use it to observe
// delays without sleeping.
func WithTimer(t backoff.Timer) Option {
	return func(o *options) {
		o.timer = t
	}
}

// WithClassifier replaces [fault.IsRetryable].
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.retryable = c
		}
	}
}

// WithName labels the log lines of this call.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Do calls fn until it succeeds, fails with a non retryable error, or the
// policy runs out of attempts.
//
// The wait between attempts is interrupted when ctx is done, in which case the
// context error is returned. Once the attempts are used up the last error is
// returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	o := options{
		logger:    zap.NewNop(),
		retryable: fault.IsRetryable,
		name:      "call",
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := p.Validate(); err != nil {
		var zero T

		return zero, err
	}

	attempt := 0
	op := func() (T, error) {
		attempt++

		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}

		if !o.retryable(err) {
			if attempt > 1 {
				o.logger.Debug("giving up on non retryable error",
					zap.String("call", o.name),
					zap.Int("attempt", attempt),
					zap.Error(err))
			}

			return res, backoff.Permanent(err)
		}

		// The last failure is returned as is, even when ctx is already done.
		if attempt >= p.MaxAttempts {
			o.logger.Warn("retries exhausted",
				zap.String("call", o.name),
				zap.Int("attempt", attempt),
				zap.Error(err))

			return res, backoff.Permanent(err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, backoff.Permanent(ctxErr)
		}

		return res, err
	}

	notify := func(err error, delay time.Duration) {
		o.logger.Warn("retrying after failure",
			zap.String("call", o.name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	return backoff.RetryNotifyWithTimerAndData(op, newBackOff(ctx, p), notify, o.timer)
}

func newBackOff(ctx context.Context, p Policy) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0

	//nolint:gosec // MaxAttempts is validated to be >= 1
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}
