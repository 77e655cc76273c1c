// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

// Package config loads timer definitions from a JSON file and builds a
// [timekeeper.Registry] from them.
//
// A config file looks like:
//
//	{
//		"timers": [
//			{"name": "heartbeat", "target": "1s", "message": "still alive", "autostart": true},
//			{"name": "uptime"}
//		]
//	}
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/matthewpi/timekeeper"
	"github.com/matthewpi/timekeeper/internal/sets"
)

// Duration is a [time.Duration] that is encoded in JSON as a Go duration
// string, e.g. "1m30s".
type Duration time.Duration

// MarshalJSON implements [json.Marshaler].
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements [json.Unmarshaler].
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("config: duration must be a string: %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	*d = Duration(v)
	return nil
}

// Config is a set of timer definitions.
type Config struct {
	Timers []TimerConfig `json:"timers"`
}

// TimerConfig defines a single timer.
type TimerConfig struct {
	// Name the timer is registered under, must be unique.
	Name string `json:"name"`

	// Target of the timer, a zero Target creates a timer that never
	// activates.
	Target Duration `json:"target,omitempty"`

	// Message is free-form text handed to the callback factory.
	Message string `json:"message,omitempty"`

	// Autostart starts the timer as soon as it is built.
	Autostart bool `json:"autostart,omitempty"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file: %w", err)
	}
	return Parse(b)
}

// Parse parses and validates a JSON config.
func Parse(b []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every timer has a unique, non-empty name and a
// non-negative target. Every problem found is reported.
func (c *Config) Validate() error {
	var errs []error
	seen := sets.New[string]()
	for i, t := range c.Timers {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("config: timers[%d]: name is required", i))
			continue
		}
		if seen.Has(t.Name) {
			errs = append(errs, fmt.Errorf("config: timers[%d]: duplicate name %q", i, t.Name))
		}
		seen.Insert(t.Name)
		if t.Target < 0 {
			errs = append(errs, fmt.Errorf("config: timer %q: target must not be negative", t.Name))
		}
	}
	return errors.Join(errs...)
}

// BuildOptions controls how [Config.Build] creates timers.
type BuildOptions struct {
	// Logger passed along to the registry.
	Logger *slog.Logger

	// Meter passed along to the registry.
	Meter metric.Meter

	// Clock used by every timer, defaults to [timekeeper.SystemClock].
	Clock timekeeper.Clock

	// Callback returns the callback for a timer, it may return nil for no
	// callback. If Callback is nil no timer gets a callback.
	Callback func(TimerConfig) func() error
}

// Build creates a registry holding one timer per definition. Timers with
// Autostart set are started before Build returns.
func (c *Config) Build(options BuildOptions) (*timekeeper.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r, err := timekeeper.NewRegistry(timekeeper.RegistryOptions{
		Logger: options.Logger,
		Meter:  options.Meter,
	})
	if err != nil {
		return nil, err
	}

	for _, tc := range c.Timers {
		opts := timekeeper.TimerOptions{
			Target: time.Duration(tc.Target),
			Clock:  options.Clock,
		}
		if options.Callback != nil {
			opts.Callback = options.Callback(tc)
		}
		t := timekeeper.NewTimer(opts)
		if tc.Autostart {
			t.Start()
		}
		r.Set(tc.Name, t)
	}
	return r, nil
}

// Reload builds a registry for c that replaces registry, which was built
// from previous. Timers whose definition is identical in both configs are
// moved over from registry and keep their elapsed time and running state,
// every other timer is built fresh.
//
// If previous or registry is nil, Reload is equivalent to Build.
func (c *Config) Reload(previous *Config, registry *timekeeper.Registry, options BuildOptions) (*timekeeper.Registry, error) {
	r, err := c.Build(options)
	if err != nil {
		return nil, err
	}
	if previous == nil || registry == nil {
		return r, nil
	}

	defs := make(map[string]TimerConfig, len(previous.Timers))
	for _, tc := range previous.Timers {
		defs[tc.Name] = tc
	}
	for _, tc := range c.Timers {
		if old, ok := defs[tc.Name]; !ok || old != tc {
			continue
		}
		t, err := registry.Get(tc.Name)
		if err != nil {
			if errors.Is(err, timekeeper.ErrNotFound) {
				// Removed from the old registry by its owner, keep the
				// fresh timer.
				continue
			}
			return nil, err
		}
		r.Set(tc.Name, t)
	}
	return r, nil
}
