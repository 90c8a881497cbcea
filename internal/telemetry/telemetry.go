// Package telemetry wires the OpenTelemetry SDK to an OTLP/gRPC collector
// for traces and metrics, grounded on the fd1az-arbitrage-bot example's
// otel.Tracer/otel.Meter usage around its detector loop.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// TracerName and MeterName identify this service's instrumentation
	// scope, the way fd1az's arbitrage detector names its own.
	TracerName = "github.com/tonarb/aceton/internal/loop"
	MeterName  = "github.com/tonarb/aceton/internal/loop"
)

// Shutdown flushes and closes every provider Setup registered.
type Shutdown func(ctx context.Context) error

// Setup configures global trace and metric providers exporting to endpoint
// over OTLP/gRPC. When endpoint is empty, it leaves otel's default no-op
// providers in place and returns a Shutdown that does nothing.
func Setup(ctx context.Context, endpoint, serviceName string) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("telemetry: building trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(endpoint), otlpmetricgrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("telemetry: building metric exporter: %w", err)
	}
	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return func(shutdownCtx context.Context) error {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("telemetry: shutting down tracer provider: %w", err)
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("telemetry: shutting down meter provider: %w", err)
		}
		return nil
	}, nil
}
