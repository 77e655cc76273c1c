// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

// Package clocktest provides a manually advanced clock for tests.
package clocktest

import (
	"sync"
	"time"
)

// Epoch is the instant a [Clock] created by [New] starts at.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock is a clock that only moves when told to. It is safe for concurrent
// use.
type Clock struct {
	mx  sync.Mutex
	now time.Time
}

// New returns a new Clock set to [Epoch].
func New() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.now = c.now.Add(d)
}
