// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matthewpi/timekeeper/internal/wait"
)

// WatcherOptions controls options for a [Watcher]. Changes to WatcherOptions
// are ignored after being provided to [NewWatcher].
type WatcherOptions struct {
	// Debounce is the duration to wait before triggering a reload, so a burst
	// of writes to the file only reloads it once.
	Debounce time.Duration

	// Logger to use for the [Watcher] instance.
	Logger *slog.Logger
}

// Watcher watches a config file and reloads it whenever it changes. A file
// that fails to load is logged and the previously loaded config is kept.
type Watcher struct {
	path string

	cfg      atomic.Pointer[Config]
	debounce *debouncer
	rewatch  atomic.Bool

	fsWatcher *fsnotify.Watcher

	logger *slog.Logger
}

// NewWatcher loads the config file at path and starts watching it for
// changes. Events are only processed once [Watcher.Start] is called.
func NewWatcher(ctx context.Context, path string, options WatcherOptions) (*Watcher, error) {
	d := options.Debounce
	if d < 10*time.Millisecond {
		d = 100 * time.Millisecond
	}
	w := &Watcher{
		path:     path,
		logger:   options.Logger,
		debounce: newDebouncer(d),
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	w.cfg.Store(cfg)

	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to create fswatcher: %w", err)
	}
	if err := w.watch(ctx); err != nil {
		_ = w.fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// Load returns the most recently loaded config. The returned config must not
// be modified.
func (w *Watcher) Load() *Config {
	return w.cfg.Load()
}

// Start listens for fsnotify events and reloads the config when necessary. It
// blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	// Close the filesystem watcher whenever the context is canceled, and
	// make sure no reload runs against it afterwards.
	defer w.fsWatcher.Close()
	defer w.debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogAttrs(ctx, slog.LevelError, "an error occurred while watching config", slog.Any("err", err))
		}
	}
}

// watch adds the config file to the fsnotify watcher. The file may be in the
// middle of being replaced, so adding it is retried for a short while.
func (w *Watcher) watch(ctx context.Context) error {
	var watchErr error
	err := wait.PollWithTimeout(
		ctx,
		100*time.Millisecond,
		5*time.Second,
		true,
		func(_ context.Context) (bool, error) {
			if err := w.fsWatcher.Add(w.path); err != nil {
				watchErr = err
				// Keep trying.
				return false, nil //nolint:nilerr
			}
			return true, nil
		},
	)
	if err != nil {
		return fmt.Errorf("config: failed to watch %q: %w", w.path, errors.Join(err, watchErr))
	}
	return nil
}

// handleEvent schedules a reload for any event that may have changed the
// config's content. It never blocks, so events keep being drained while a
// reload is pending.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
	case event.Op.Has(fsnotify.Write):
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// Editors commonly replace the file instead of writing to it, which
		// drops the watch. The new file is watched again before reloading.
		w.rewatch.Store(true)
	default:
		return
	}

	w.debounce.Trigger(func() {
		if w.rewatch.Swap(false) {
			if err := w.watch(ctx); err != nil {
				w.logger.LogAttrs(ctx, slog.LevelError, "failed to re-watch config", slog.Any("err", err))
				w.rewatch.Store(true)
				return
			}
		}
		if err := w.reload(ctx); err != nil {
			w.logger.LogAttrs(ctx, slog.LevelError, "failed to reload config, keeping previous", slog.Any("err", err))
		}
	})
}

// reload loads the config file and swaps it in if it is valid.
func (w *Watcher) reload(ctx context.Context) error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}
	w.cfg.Store(cfg)
	w.logger.LogAttrs(
		ctx,
		slog.LevelInfo,
		"config reloaded",
		slog.String("path", w.path),
		slog.Int("timers", len(cfg.Timers)),
	)
	return nil
}
