// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package timekeeper

import (
	"fmt"
	"strings"
	"time"
)

// TimerOptions controls options for a [Timer]. Changes to TimerOptions are
// ignored after being provided to [NewTimer].
type TimerOptions struct {
	// Target is the elapsed duration at which the timer is considered
	// activated. A zero or negative Target disables activation, which is
	// what you want for a plain stopwatch. In particular a negative Target
	// never activates, it is not treated as already reached.
	Target time.Duration

	// Callback is invoked by [Timer.Update] while the timer is activated.
	// Any error it returns is passed back to the caller of Update untouched.
	Callback func() error

	// Clock to read the current time from, defaults to [SystemClock].
	Clock Clock
}

// Timer accumulates elapsed time across start/stop cycles and reports when
// the accumulated time reaches a target duration.
//
// The zero value is not usable, use [NewTimer].
type Timer struct {
	clock    Clock
	target   time.Duration
	callback func() error

	running     bool
	started     time.Time
	accumulated time.Duration
}

// NewTimer creates a new stopped [Timer] with no elapsed time.
func NewTimer(options TimerOptions) *Timer {
	t := &Timer{
		clock:    options.Clock,
		target:   options.Target,
		callback: options.Callback,
	}
	if t.clock == nil {
		t.clock = SystemClock
	}
	return t
}

// Start starts accumulating time. Starting a running timer does nothing.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.started = t.clock.Now()
	t.running = true
}

// Stop banks the current interval and stops the timer. It returns
// [ErrInvalidState] if the timer is not running.
func (t *Timer) Stop() error {
	if !t.running {
		return ErrInvalidState
	}
	t.accumulated += t.clock.Now().Sub(t.started)
	t.started = time.Time{}
	t.running = false
	return nil
}

// Reset stops the timer and discards all elapsed time, including the
// interval currently running.
func (t *Timer) Reset() {
	t.accumulated = 0
	t.started = time.Time{}
	t.running = false
}

// Elapsed returns the total time accumulated by the timer, including the
// current interval if the timer is running.
func (t *Timer) Elapsed() time.Duration {
	if !t.running {
		return t.accumulated
	}
	return t.accumulated + t.clock.Now().Sub(t.started)
}

// IsActivated reports whether the timer has a target and its elapsed time
// has reached it.
//
// If the timer is activated and reset is true, the timer is reset and
// immediately started again, so subsequent calls measure from this one.
// This is how periodic alarms are polled.
func (t *Timer) IsActivated(reset bool) bool {
	if !t.HasTarget() {
		return false
	}

	now := t.clock.Now()
	elapsed := t.accumulated
	if t.running {
		elapsed += now.Sub(t.started)
	}
	if elapsed < t.target {
		return false
	}

	if reset {
		// Restart from the instant the activation was observed so no time
		// is lost between the reset and the start.
		t.accumulated = 0
		t.started = now
		t.running = true
	}
	return true
}

// Update invokes the timer's callback if the timer is activated.
//
// Update never modifies the timer, calling it repeatedly on an activated
// timer invokes the callback every time.
func (t *Timer) Update() error {
	_, err := t.update()
	return err
}

// update is Update, also reporting whether the callback was invoked.
func (t *Timer) update() (bool, error) {
	if t.callback == nil || !t.IsActivated(false) {
		return false, nil
	}
	return true, t.callback()
}

// Running reports whether the timer is accumulating time.
func (t *Timer) Running() bool {
	return t.running
}

// Target returns the activation target of the timer, zero if none is set.
func (t *Timer) Target() time.Duration {
	if !t.HasTarget() {
		return 0
	}
	return t.target
}

// HasTarget reports whether the timer can be activated by elapsed time.
func (t *Timer) HasTarget() bool {
	return t.target > 0
}

// String returns a human-readable representation of the timer.
func (t *Timer) String() string {
	var b strings.Builder
	b.WriteString("Timer(elapsed=")
	b.WriteString(t.Elapsed().String())
	b.WriteString(", target=")
	if t.HasTarget() {
		b.WriteString(t.target.String())
	} else {
		b.WriteString("none")
	}
	fmt.Fprintf(&b, ", running=%t, callback=%t)", t.running, t.callback != nil)
	return b.String()
}
