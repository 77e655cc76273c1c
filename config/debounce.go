// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package config

import (
	"sync"
	"time"
)

// debouncer runs the most recently triggered function once triggers have
// stopped arriving for a quiet period.
type debouncer struct {
	mx      sync.Mutex
	quiet   time.Duration
	pending *time.Timer
	stopped bool
}

func newDebouncer(quiet time.Duration) *debouncer {
	return &debouncer{quiet: quiet}
}

// Trigger schedules f, replacing any function that has not run yet. Triggers
// after Stop are dropped.
func (d *debouncer) Trigger(f func()) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = time.AfterFunc(d.quiet, f)
}

// Stop cancels the pending function, if any, and drops all future triggers.
func (d *debouncer) Stop() {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
