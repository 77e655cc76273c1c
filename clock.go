// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package timekeeper

import "time"

// Clock is the time source used by a [Timer].
type Clock interface {
	Now() time.Time
}

// SystemClock is the [Clock] backed by [time.Now].
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
