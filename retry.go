// go-isp
// Copyright (c) 2026 The Nuvotools Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-isp.
//
// go-isp is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-isp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-isp; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package isp

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig configures bounded-retry behavior for transient transport
// failures. It is the only place in the library where waiting happens
// outside a transport read.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	// InitialBackoff is the delay after the first failed attempt
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential backoff
	MaxBackoff time.Duration
	// BackoffMultiplier scales the backoff after each attempt
	BackoffMultiplier float64
	// Jitter adds up to this fraction of randomness to each backoff
	Jitter float64
	// RetryTimeout bounds the total time spent across all attempts.
	// Zero means no overall bound.
	RetryTimeout time.Duration
}

// DefaultRetryConfig returns the retry configuration used when none is
// provided.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      2 * time.Second,
	}
}

// RetryWithConfig executes operation, retrying while it returns a retryable
// error (see IsRetryable) and attempts remain. Non-retryable errors stop
// immediately. The context is checked between attempts; there is no
// cancellation mid-wait other than the transport timeout itself.
func RetryWithConfig(ctx context.Context, config *RetryConfig, operation func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var deadline time.Time
	if config.RetryTimeout > 0 {
		deadline = time.Now().Add(config.RetryTimeout)
	}

	backoff := config.InitialBackoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("retry aborted: %w", ctxErr)
		}

		err = operation()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}

		if backoff > 0 {
			delay := backoff
			if config.Jitter > 0 {
				delay += time.Duration(rand.Float64() * config.Jitter * float64(backoff))
			}
			time.Sleep(delay)
			backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
			if config.MaxBackoff > 0 && backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
