// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewpi/timekeeper/internal/clocktest"
)

const sampleConfig = `{
	"timers": [
		{"name": "heartbeat", "target": "1s", "message": "still alive", "autostart": true},
		{"name": "deadline", "target": "1m30s"},
		{"name": "uptime", "autostart": true}
	]
}`

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, []TimerConfig{
		{Name: "heartbeat", Target: Duration(time.Second), Message: "still alive", Autostart: true},
		{Name: "deadline", Target: Duration(90 * time.Second)},
		{Name: "uptime", Autostart: true},
	}, c.Timers)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"malformed", `{"timers": [`, "failed to decode"},
		{"unknown field", `{"timers": [{"name": "a", "interval": "1s"}]}`, "unknown field"},
		{"bad duration", `{"timers": [{"name": "a", "target": "soon"}]}`, "invalid duration"},
		{"numeric duration", `{"timers": [{"name": "a", "target": 5}]}`, "duration must be a string"},
		{"missing name", `{"timers": [{"target": "1s"}]}`, "name is required"},
		{"duplicate name", `{"timers": [{"name": "a"}, {"name": "a"}]}`, `duplicate name "a"`},
		{"negative target", `{"timers": [{"name": "a", "target": "-1s"}]}`, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := &Config{Timers: []TimerConfig{
		{Name: ""},
		{Name: "a", Target: Duration(-time.Second)},
		{Name: "a"},
	}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "must not be negative")
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(1500 * time.Millisecond).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(b))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.json")
	writeConfig(t, path, sampleConfig)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Timers, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild(t *testing.T) {
	c, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	clock := clocktest.New()
	var fired []string
	r, err := c.Build(BuildOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock,
		Callback: func(tc TimerConfig) func() error {
			if tc.Message == "" {
				return nil
			}
			return func() error {
				fired = append(fired, tc.Message)
				return nil
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"deadline", "heartbeat", "uptime"}, r.Names())

	heartbeat, err := r.Get("heartbeat")
	require.NoError(t, err)
	assert.True(t, heartbeat.Running())
	assert.Equal(t, time.Second, heartbeat.Target())

	deadline, err := r.Get("deadline")
	require.NoError(t, err)
	assert.False(t, deadline.Running())

	uptime, err := r.Get("uptime")
	require.NoError(t, err)
	assert.False(t, uptime.HasTarget())

	clock.Advance(time.Second)
	require.NoError(t, r.UpdateAll(context.Background()))
	assert.Equal(t, []string{"still alive"}, fired)
	assert.Equal(t, time.Second, uptime.Elapsed())
}

func TestBuild_Invalid(t *testing.T) {
	c := &Config{Timers: []TimerConfig{{Name: "a"}, {Name: "a"}}}
	_, err := c.Build(BuildOptions{})
	require.Error(t, err)
}

func TestReload_CarriesUnchangedTimers(t *testing.T) {
	previous, err := Parse([]byte(`{"timers": [
		{"name": "kept", "target": "1m", "autostart": true},
		{"name": "changed", "target": "1m", "autostart": true},
		{"name": "dropped", "autostart": true}
	]}`))
	require.NoError(t, err)

	clock := clocktest.New()
	options := BuildOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock,
	}
	old, err := previous.Build(options)
	require.NoError(t, err)
	clock.Advance(10 * time.Second)

	latest, err := Parse([]byte(`{"timers": [
		{"name": "kept", "target": "1m", "autostart": true},
		{"name": "changed", "target": "2m", "autostart": true},
		{"name": "added", "autostart": true}
	]}`))
	require.NoError(t, err)

	r, err := latest.Reload(previous, old, options)
	require.NoError(t, err)
	assert.Equal(t, []string{"added", "changed", "kept"}, r.Names())

	oldKept, err := old.Get("kept")
	require.NoError(t, err)
	kept, err := r.Get("kept")
	require.NoError(t, err)
	assert.Same(t, oldKept, kept)
	assert.Equal(t, 10*time.Second, kept.Elapsed())

	changed, err := r.Get("changed")
	require.NoError(t, err)
	assert.Zero(t, changed.Elapsed())
	assert.Equal(t, 2*time.Minute, changed.Target())
	assert.True(t, changed.Running())

	added, err := r.Get("added")
	require.NoError(t, err)
	assert.Zero(t, added.Elapsed())
}

func TestReload_WithoutPrevious(t *testing.T) {
	c, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	r, err := c.Reload(nil, nil, BuildOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Count())
}

func TestReload_TimerRemovedFromOldRegistry(t *testing.T) {
	c, err := Parse([]byte(`{"timers": [{"name": "a", "autostart": true}]}`))
	require.NoError(t, err)

	clock := clocktest.New()
	options := BuildOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Clock: clock}
	old, err := c.Build(options)
	require.NoError(t, err)
	require.NoError(t, old.Remove("a"))
	clock.Advance(time.Second)

	r, err := c.Reload(c, old, options)
	require.NoError(t, err)
	a, err := r.Get("a")
	require.NoError(t, err)
	assert.Zero(t, a.Elapsed())
}
