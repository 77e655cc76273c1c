// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package wait

import "time"

// intervalTimer wraps a lazily created [time.Timer] that is re-armed for
// every iteration of a polling loop.
type intervalTimer struct {
	timer *time.Timer
}

func (t *intervalTimer) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C
}

// Start arms the timer to fire once after d. It must only be called once the
// previous value has been received from C, or before the first use.
func (t *intervalTimer) Start(d time.Duration) {
	if t.timer == nil {
		t.timer = time.NewTimer(d)
		return
	}
	t.timer.Reset(d)
}

func (t *intervalTimer) Stop() bool {
	if t.timer == nil {
		return true
	}
	return t.timer.Stop()
}
