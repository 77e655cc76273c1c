// SPDX-License-Identifier: Apache-2.0

// Package wait implements the polling loop used to drive timers.
package wait

import (
	"context"
	"time"
)

// ConditionWithContextFunc returns true if the condition is satisfied, or an error
// if the loop should be aborted.
//
// The caller passes along a context that can be used by the condition function.
type ConditionWithContextFunc func(context.Context) (done bool, err error)

// Poll executes condition every interval until the context is cancelled, the
// condition returns true, or the condition returns an error. The interval is
// measured from the end of the previous condition, so a slow condition delays
// the next one instead of piling up. If immediate is true the condition is
// invoked once before the first wait, regardless of whether the context has
// been cancelled. The returned error is the error returned by the last
// condition or the context error if the context was terminated.
func Poll(ctx context.Context, interval time.Duration, immediate bool, condition ConditionWithContextFunc) error {
	var t intervalTimer
	defer t.Stop()

	if immediate {
		if ok, err := condition(ctx); err != nil || ok {
			return err
		}
	}

	doneCh := ctx.Done()
	for {
		t.Start(interval)

		select {
		case <-doneCh:
			return ctx.Err()
		case <-t.C():
		}

		// There is no priority between the two select cases, so a short
		// interval may keep winning against a cancelled context. Check
		// explicitly so the condition never runs after cancellation.
		if err := ctx.Err(); err != nil {
			return err
		}

		if ok, err := condition(ctx); err != nil || ok {
			return err
		}
	}
}

// PollWithTimeout is [Poll] bounded by timeout, after which it returns
// [context.DeadlineExceeded] unless the condition finished first.
func PollWithTimeout(ctx context.Context, interval, timeout time.Duration, immediate bool, condition ConditionWithContextFunc) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Poll(ctx, interval, immediate, condition)
}
