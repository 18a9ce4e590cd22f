package observability

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fitforge/fitkit/fitkit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// echoAgent answers every message with a fixed response.
type echoAgent struct {
	name     string
	response string
	err      error
}

func (a *echoAgent) Name() string           { return a.name }
func (a *echoAgent) Capabilities() []string { return []string{"test"} }
func (a *echoAgent) Introspect() *fitkit.IntrospectionResult {
	return fitkit.DefaultIntrospectionResult(a)
}
func (a *echoAgent) Process(ctx context.Context, msg *fitkit.Message) (*fitkit.Message, error) {
	if a.err != nil {
		return nil, a.err
	}
	return fitkit.NewMessage("assistant", a.response), nil
}

func setupTestTracing(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	otel.SetTracerProvider(provider)
	return provider, exporter
}

func TestTracingMiddlewareCreatesSpan(t *testing.T) {
	provider, exporter := setupTestTracing(t)
	defer provider.Shutdown(context.Background())
	exporter.Reset()

	traced := NewTracingMiddleware(&echoAgent{name: "nutritionist", response: "eat well"}, "")
	_, err := traced.Process(context.Background(), fitkit.NewMessage("user", "help"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	provider.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "agent.nutritionist.process" {
		t.Errorf("unexpected span name: %s", spans[0].Name)
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected OK status, got %v", spans[0].Status.Code)
	}
}

func TestTracingMiddlewareRecordsError(t *testing.T) {
	provider, exporter := setupTestTracing(t)
	defer provider.Shutdown(context.Background())
	exporter.Reset()

	traced := NewTracingMiddleware(&echoAgent{name: "broken", err: errors.New("model offline")}, "")
	_, err := traced.Process(context.Background(), fitkit.NewMessage("user", "help"))
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	provider.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected Error status, got %v", spans[0].Status.Code)
	}
}

func TestTraceContextRoundTrip(t *testing.T) {
	provider, _ := setupTestTracing(t)
	defer provider.Shutdown(context.Background())
	InitTracing("fitkit-test", "none", "")

	ctx, span := GetTracer("test").Start(context.Background(), "outer")
	defer span.End()

	metadata := InjectTraceContext(ctx, nil)
	if _, ok := metadata["trace_context"]; !ok {
		t.Fatal("trace context not injected")
	}

	extracted := ExtractTraceContext(context.Background(), metadata)
	got := trace.SpanContextFromContext(extracted)
	want := span.SpanContext()
	if got.TraceID() != want.TraceID() {
		t.Errorf("trace ID lost in round trip: got %s want %s", got.TraceID(), want.TraceID())
	}
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer provider.Shutdown(context.Background())

	instrumented, err := NewMetricsMiddleware(&echoAgent{name: "workout_specialist", response: "plan ready"})
	if err != nil {
		t.Fatalf("NewMetricsMiddleware failed: %v", err)
	}
	if _, err := instrumented.Process(context.Background(), fitkit.NewMessage("user", "plan")); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	var requests *metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == "fitkit.agent.requests" {
				requests = &sm.Metrics[i]
			}
		}
	}
	if requests == nil {
		t.Fatal("request counter not found")
	}
	sum, ok := requests.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) == 0 {
		t.Fatalf("unexpected counter data: %#v", requests.Data)
	}
	if sum.DataPoints[0].Value < 1 {
		t.Errorf("expected at least 1 request, got %d", sum.DataPoints[0].Value)
	}
}

func TestMetricsMiddlewareCountsErrors(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer provider.Shutdown(context.Background())

	instrumented, err := NewMetricsMiddleware(&echoAgent{name: "broken", err: errors.New("down")})
	if err != nil {
		t.Fatalf("NewMetricsMiddleware failed: %v", err)
	}
	if _, err := instrumented.Process(context.Background(), fitkit.NewMessage("user", "plan")); err == nil {
		t.Fatal("expected error to propagate")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "fitkit.agent.errors" {
				found = true
			}
		}
	}
	if !found {
		t.Error("error counter not recorded")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFormats(t *testing.T) {
	if NewLogger("debug", "console") == nil {
		t.Error("console logger should not be nil")
	}
	if NewLogger("info", "json") == nil {
		t.Error("json logger should not be nil")
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	if _, err := InitTracing("fitkit-test", "jaeger", ""); err == nil {
		t.Error("expected error for unknown exporter")
	}
}
