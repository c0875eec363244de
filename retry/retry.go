// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package retry provides a reusable bounded exponential backoff policy for
// network-bound operations such as language model invocations.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy describes a bounded exponential backoff schedule.
// The zero value is not usable; construct with DefaultPolicy or set
// MaxAttempts explicitly.
type Policy struct {
	// MaxAttempts is the total number of attempts (must be > 0).
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	// Values below 1 fall back to doubling.
	Multiplier float64
}

// DefaultPolicy returns the schedule used for LLM invocation retries:
// 3 attempts with 1s and 2s pauses between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

// Do runs operation until it succeeds, the schedule is exhausted, or ctx
// ends. It reports the error of the last attempt, or the context error
// when the context ends first.
func (p Policy) Do(ctx context.Context, operation func() error) error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			if attempt > 1 {
				slog.Debug("recovered after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == p.MaxAttempts {
			return err
		}
		slog.Debug("attempt failed, backing off",
			"attempt", attempt, "of", p.MaxAttempts, "err", err)

		if err := p.pause(ctx, attempt); err != nil {
			return err
		}
	}
}

// pause blocks for the delay that follows the n-th failed attempt,
// returning the context error if ctx ends during the wait.
func (p Policy) pause(ctx context.Context, n int) error {
	timer := time.NewTimer(p.delay(n))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p Policy) delay(n int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= multiplier
	}
	return time.Duration(d)
}
