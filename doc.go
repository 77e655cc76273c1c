// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

// Package timekeeper implements elapsed-time counters that can be started,
// stopped and reset, and that report when they reach a target duration.
//
// A [Timer] can be used on its own, for example as a free-running stopwatch
// without a target, or be registered under a name in a [Registry] which
// applies batch operations to every timer it holds.
//
// Nothing in this package drives time by itself. The embedding application
// is expected to poll timers, either by calling [Registry.UpdateAll] and
// [Registry.GetActivated] from its own loop or by using [Registry.Run].
//
// Timers and registries are not safe for concurrent use.
package timekeeper
