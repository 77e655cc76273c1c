// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

// Command timekeeper runs the timers defined in a config file and logs them
// as they activate. The config file is reloaded whenever it changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewpi/timekeeper"
	"github.com/matthewpi/timekeeper/config"
	"github.com/matthewpi/timekeeper/internal/wait"
)

func main() {
	var (
		configPath string
		interval   time.Duration
		logLevel   slog.Level
	)
	flag.StringVar(&configPath, "config", "timers.json", "path to the timer config file")
	flag.DurationVar(&interval, "interval", 50*time.Millisecond, "how often timers are polled")
	flag.TextVar(&logLevel, "log-level", slog.LevelInfo, "minimum log level (debug, info, warn, error)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, configPath, interval); err != nil && !errors.Is(err, context.Canceled) {
		logger.LogAttrs(ctx, slog.LevelError, "timekeeper exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	w, err := config.NewWatcher(ctx, configPath, config.WatcherOptions{Logger: logger})
	if err != nil {
		return err
	}
	go w.Start(ctx)

	var (
		cfg      *config.Config
		registry *timekeeper.Registry
	)
	return wait.Poll(ctx, interval, true, func(ctx context.Context) (bool, error) {
		if latest := w.Load(); latest != cfg {
			r, err := latest.Reload(cfg, registry, config.BuildOptions{
				Logger:   logger,
				Callback: logCallback(ctx, logger),
			})
			if err != nil {
				return false, err
			}
			cfg, registry = latest, r
			logger.LogAttrs(ctx, slog.LevelInfo, "timers loaded", slog.String("timers", registry.String()))
		}

		if err := registry.UpdateAll(ctx); err != nil {
			return false, err
		}
		for _, e := range registry.GetActivated(ctx, true) {
			logger.LogAttrs(ctx, slog.LevelInfo, "timer activated", slog.String("name", e.Name), slog.String("timer", e.Timer.String()))
		}
		return false, nil
	})
}

// logCallback returns a callback factory that logs each timer's message when
// it fires. Timers without a message get no callback.
func logCallback(ctx context.Context, logger *slog.Logger) func(config.TimerConfig) func() error {
	return func(tc config.TimerConfig) func() error {
		if tc.Message == "" {
			return nil
		}
		return func() error {
			logger.LogAttrs(ctx, slog.LevelInfo, tc.Message, slog.String("name", tc.Name))
			return nil
		}
	}
}
