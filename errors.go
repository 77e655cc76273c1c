// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package timekeeper

import "errors"

var (
	// ErrInvalidState is returned when stopping a timer that is not running.
	ErrInvalidState = errors.New("timekeeper: timer is not running")

	// ErrNotFound is returned when a name is not registered in a [Registry].
	ErrNotFound = errors.New("timekeeper: timer not found")
)
