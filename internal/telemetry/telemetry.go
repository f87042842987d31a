// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

// Package telemetry wires OpenTelemetry tracing for rule evaluation.
// Export is opt-in; with tracing disabled every span call is a no-op
// against the default provider.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "caged/engine"

// Config holds OpenTelemetry configuration.
type Config struct {
	Enabled     bool
	ExporterURL string
	ServiceName string
}

// Init sets up the global tracer provider and returns its shutdown
// function. With Enabled false the shutdown function is a no-op and no
// exporter is created.
func Init(ctx context.Context, config Config) (func(), error) {
	if !config.Enabled {
		return func() {}, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.ExporterURL),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}, nil
}

// StartRule opens a span for one rule evaluation.
func StartRule(ctx context.Context, ruleID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "rule.run",
		trace.WithAttributes(attribute.String("rule.id", ruleID)),
	)
}

// Tracer returns the engine tracer for ad-hoc spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
