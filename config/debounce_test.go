// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package config

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LastTriggerWins(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var first, last atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { first.Add(1) })
	}
	d.Trigger(func() { last.Add(1) })

	assert.Eventually(t, func() bool { return last.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, first.Load(), "superseded calls must not run")
}

func TestDebouncer_Stop(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
