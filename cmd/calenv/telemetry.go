package main

import (
	"context"
	"os"
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const ENV_OTEL_ENDPOINT = "CALENV_OTEL_ENDPOINT"

// setUpTelemetry installs an OTLP exporter when an endpoint is
// configured. The returned function flushes the pending spans.
func setUpTelemetry() func() {
	endpoint := os.Getenv(ENV_OTEL_ENDPOINT)
	if len(endpoint) == 0 {
		return func() {}
	}
	logger := calenv.NewLogger("telemetry").WithField("endpoint", endpoint)

	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		logger.WithError(err).Error("could not create exporter")
		return func() {}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes("",
			attribute.String("service.name", "calenv"),
			attribute.String("service.version", calenv.CALENV_VERSION),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("could not flush traces")
		}
	}
}
