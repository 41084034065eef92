package tracing

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracerWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	tp, tracer, err := InitTracer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tp.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "test")
	if !span.SpanContext().IsValid() {
		t.Fatal("expected a recording span with a valid context")
	}
	span.End()
}

func TestInitTracerUsesExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	exporter := tracetest.NewInMemoryExporter()
	var gotEndpoint string
	orig := newExporterFunc
	newExporterFunc = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		gotEndpoint = endpoint
		return exporter, nil
	}
	defer func() { newExporterFunc = orig }()

	tp, tracer, err := InitTracer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := tracer.Start(context.Background(), "exported")
	span.End()
	defer tp.Shutdown(context.Background())
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if gotEndpoint != "collector:4317" {
		t.Fatalf("expected scheme to be stripped, got %s", gotEndpoint)
	}
	if len(exporter.GetSpans()) != 1 {
		t.Fatalf("expected 1 exported span, got %d", len(exporter.GetSpans()))
	}
}

func TestInitTracerExporterError(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	orig := newExporterFunc
	newExporterFunc = func(context.Context, string) (sdktrace.SpanExporter, error) {
		return nil, errors.New("no collector")
	}
	defer func() { newExporterFunc = orig }()

	if _, _, err := InitTracer(context.Background()); err == nil {
		t.Fatal("expected exporter error")
	}
}
