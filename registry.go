// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/matthewpi/timekeeper/internal/sets"
	"github.com/matthewpi/timekeeper/internal/wait"
)

// RegistryOptions controls options for a [Registry]. Changes to
// RegistryOptions are ignored after being provided to [NewRegistry].
type RegistryOptions struct {
	// Logger to use for the [Registry] instance.
	Logger *slog.Logger

	// Meter used to create the registry's instruments, defaults to the
	// global meter provider.
	Meter metric.Meter
}

// Entry is a timer registered in a [Registry] along with its name.
type Entry struct {
	Name  string
	Timer *Timer
}

// Registry is a collection of named timers. A registry owns the timers it
// holds, a timer must not be registered under more than one name or in more
// than one registry.
type Registry struct {
	timers map[string]*Timer

	logger  *slog.Logger
	metrics registryMetrics
}

// NewRegistry creates a new empty [Registry].
func NewRegistry(options RegistryOptions) (*Registry, error) {
	r := &Registry{
		timers: make(map[string]*Timer),
		logger: options.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	meter := options.Meter
	if meter == nil {
		meter = otel.Meter("github.com/matthewpi/timekeeper")
	}
	var err error
	r.metrics, err = newRegistryMetrics(meter)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Set registers timer under name, replacing any timer already registered
// under it.
func (r *Registry) Set(name string, timer *Timer) {
	if timer == nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "ignoring nil timer", slog.String("name", name))
		return
	}
	if _, ok := r.timers[name]; ok {
		r.logger.LogAttrs(context.Background(), slog.LevelDebug, "replacing timer", slog.String("name", name))
	} else {
		r.logger.LogAttrs(context.Background(), slog.LevelDebug, "registering timer", slog.String("name", name))
	}
	r.timers[name] = timer
}

// Get returns the timer registered under name. If there is none, an error
// wrapping [ErrNotFound] is returned.
func (r *Registry) Get(name string) (*Timer, error) {
	t, ok := r.timers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return t, nil
}

// Remove unregisters the timer registered under name. If there is none, an
// error wrapping [ErrNotFound] is returned.
func (r *Registry) Remove(name string) error {
	if _, ok := r.timers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(r.timers, name)
	r.logger.LogAttrs(context.Background(), slog.LevelDebug, "removed timer", slog.String("name", name))
	return nil
}

// Count returns the number of registered timers.
func (r *Registry) Count() int {
	return len(r.timers)
}

// UpdateAll calls [Timer.Update] on every registered timer.
//
// Every timer is updated even if a callback fails. The errors returned by
// callbacks are annotated with the timer's name and joined together.
func (r *Registry) UpdateAll(ctx context.Context) error {
	var errs []error
	for name, t := range r.timers {
		invoked, err := t.update()
		if !invoked {
			continue
		}
		r.metrics.callback(ctx, name, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("timekeeper: callback for timer %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// StartAll starts every registered timer.
func (r *Registry) StartAll() {
	for _, t := range r.timers {
		t.Start()
	}
}

// StopAll stops every registered timer that is running. Timers that are
// already stopped are left alone.
func (r *Registry) StopAll() {
	for _, t := range r.timers {
		// The only error Stop returns is ErrInvalidState, which just means
		// there is nothing to stop.
		_ = t.Stop()
	}
}

// ResetAll resets every registered timer.
func (r *Registry) ResetAll() {
	for _, t := range r.timers {
		t.Reset()
	}
}

// GetActivated returns every registered timer that is activated. If reset
// is true, each activated timer is reset and restarted, see
// [Timer.IsActivated].
func (r *Registry) GetActivated(ctx context.Context, reset bool) []Entry {
	var activated []Entry
	for name, t := range r.timers {
		if !t.IsActivated(reset) {
			continue
		}
		r.metrics.activated(ctx, name)
		r.logger.LogAttrs(ctx, slog.LevelDebug, "timer activated", slog.String("name", name), slog.Bool("reset", reset))
		activated = append(activated, Entry{Name: name, Timer: t})
	}
	return activated
}

// GetAll returns every registered timer.
func (r *Registry) GetAll() []Entry {
	entries := make([]Entry, 0, len(r.timers))
	for name, t := range r.timers {
		entries = append(entries, Entry{Name: name, Timer: t})
	}
	return entries
}

// Names returns the names of all registered timers in sorted order.
func (r *Registry) Names() []string {
	return sets.List(sets.KeySet(r.timers))
}

// String returns the registry's timer names, sorted.
func (r *Registry) String() string {
	return "Registry(" + strings.Join(r.Names(), ", ") + ")"
}

// Run calls [Registry.UpdateAll] immediately and then every interval until
// the context is cancelled or a callback fails.
//
// Run returns the context's error if it was cancelled, otherwise the error
// returned by UpdateAll. Callbacks are invoked on the calling goroutine, the
// registry must not be modified concurrently while Run is executing.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("timekeeper: interval must be positive, got %s", interval)
	}
	return wait.Poll(ctx, interval, true, func(ctx context.Context) (bool, error) {
		return false, r.UpdateAll(ctx)
	})
}
