// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package timekeeper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const attrTimerName = "timer.name"

// registryMetrics holds the instruments recorded by a [Registry].
type registryMetrics struct {
	activations    metric.Int64Counter
	callbacks      metric.Int64Counter
	callbackErrors metric.Int64Counter
}

func newRegistryMetrics(meter metric.Meter) (registryMetrics, error) {
	var (
		m   registryMetrics
		err error
	)
	m.activations, err = meter.Int64Counter(
		"timekeeper.activations.total",
		metric.WithDescription("Number of timers reported as activated."),
	)
	if err != nil {
		return m, fmt.Errorf("timekeeper: failed to create otel meter: %w", err)
	}
	m.callbacks, err = meter.Int64Counter(
		"timekeeper.callbacks.total",
		metric.WithDescription("Number of timer callbacks invoked."),
	)
	if err != nil {
		return m, fmt.Errorf("timekeeper: failed to create otel meter: %w", err)
	}
	m.callbackErrors, err = meter.Int64Counter(
		"timekeeper.callbacks.errors",
		metric.WithDescription("Number of timer callbacks that returned an error."),
	)
	if err != nil {
		return m, fmt.Errorf("timekeeper: failed to create otel meter: %w", err)
	}
	return m, nil
}

func timerAttrs(name string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(attrTimerName, name))
}

func (m registryMetrics) activated(ctx context.Context, name string) {
	m.activations.Add(ctx, 1, timerAttrs(name))
}

func (m registryMetrics) callback(ctx context.Context, name string, err error) {
	attrs := timerAttrs(name)
	m.callbacks.Add(ctx, 1, attrs)
	if err != nil {
		m.callbackErrors.Add(ctx, 1, attrs)
	}
}
