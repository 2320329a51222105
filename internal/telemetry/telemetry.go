// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package telemetry wires the opt-in OpenTelemetry pipeline the
// daemon's analysis handlers start spans from. Nothing is exported
// unless the user configures an endpoint.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config selects the exporter target. Enabled comes from the config
// file or SIMANTIX_TELEMETRY_ENDPOINT.
type Config struct {
	Enabled     bool
	ExporterURL string
	ServiceName string
}

// Init installs the process tracer provider and returns its shutdown
// hook. With tracing disabled the hook is a no-op and no exporter is
// dialed.
func Init(ctx context.Context, cfg Config) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}

	// Plain HTTP: collector endpoints are local or on a trusted
	// network.
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.ExporterURL),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String("dev"),
	))
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}, nil
}

// GetTracer returns the tracer spans are started from.
func GetTracer() oteltrace.Tracer {
	return otel.Tracer("simantix")
}
