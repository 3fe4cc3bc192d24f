package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

func newCollectorExporter(ctx context.Context, endpoint string) (trace.SpanExporter, error) {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	return otlptracehttp.New(ctx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(endpoint),
	)
}

func newStdoutExporter() (trace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(os.Stdout),
		stdouttrace.WithoutTimestamps(),
	)
}

func newResource(serviceName string) *resource.Resource {
	if serviceName == "" {
		serviceName = "taskflow"
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
}

// NewProvider installs the global tracer provider. Spans go to the OTLP
// collector at endpoint, or to stdout when stdout is set. With neither, the
// default no-op provider stays in place.
//
// Returns a teardown func
func NewProvider(ctx context.Context, serviceName, endpoint string, stdout bool) (func(), error) {
	var (
		exp trace.SpanExporter
		err error
	)

	switch {
	case endpoint != "":
		exp, err = newCollectorExporter(ctx, endpoint)
	case stdout:
		exp, err = newStdoutExporter()
	default:
		return func() {}, nil
	}
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(newResource(serviceName)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error("Unable to shutdown trace provider", slog.Any("error", err))
		}
	}, nil
}
