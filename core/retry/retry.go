// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package retry re-runs API calls that failed with a transient error.
//
// Nothing in the request path retries on its own; callers opt in by wrapping
// a call with [Do] or [Value].
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/biliapi/core/apierror"
)

// Policy bounds the exponential backoff between attempts.
// Zero durations fall back to the backoff library defaults.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero runs op exactly once.
	MaxRetries uint64
}

// DefaultPolicy retries up to three times over at most a minute.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  time.Minute,
		MaxRetries:      3,
	}
}

// Retryable reports whether err is worth another attempt.
// Only Server and Network categories qualify.
func Retryable(err error) bool {
	return apierror.CategoryOf(err).Retryable()
}

// Do runs op until it succeeds, fails with a non-retryable error,
// the policy gives up, or ctx is done. The last error from op is returned.
func Do(ctx context.Context, policy Policy, op func(context.Context) error) error {
	attempt := 0

	return backoff.RetryNotify(func() error {
		attempt++

		err := op(ctx)
		if err == nil || Retryable(err) {
			return err
		}

		return backoff.Permanent(err)
	}, policy.backOff(ctx), func(err error, wait time.Duration) {
		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Retrying API call")
	})
}

// Value is Do for operations that return a value.
func Value[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var result T

	err := Do(ctx, policy, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}

		result = v

		return nil
	})

	return result, err
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()

	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}

	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}

	if p.MaxElapsedTime > 0 {
		exp.MaxElapsedTime = p.MaxElapsedTime
	}

	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}
