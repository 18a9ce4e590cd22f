// Package observability wires OpenTelemetry tracing and metrics plus
// structured logging around the agent pipeline.
package observability

import (
	"context"
	"fmt"

	"github.com/fitforge/fitkit/fitkit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

var globalTracerProvider *sdktrace.TracerProvider

// InitTracing initializes OpenTelemetry tracing. exporter is "none",
// "stdout", or "otlp"; otlpEndpoint is the gRPC collector address for
// the otlp exporter.
func InitTracing(serviceName, exporter, otlpEndpoint string) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	switch exporter {
	case "otlp":
		exp, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpoint(otlpEndpoint),
			otlptracegrpc.WithInsecure(), // For development; use TLS in production
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exp))
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exp))
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	globalTracerProvider = tp
	return tp, nil
}

// GetTracer returns a tracer from the current global tracer provider.
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// ExtractTraceContext extracts W3C Trace Context from message metadata.
func ExtractTraceContext(ctx context.Context, metadata map[string]interface{}) context.Context {
	if metadata == nil {
		return ctx
	}
	traceCtx, ok := metadata["trace_context"]
	if !ok {
		return ctx
	}

	carrier := make(propagation.MapCarrier)
	if traceMap, ok := traceCtx.(map[string]interface{}); ok {
		for k, v := range traceMap {
			if str, ok := v.(string); ok {
				carrier[k] = str
			}
		}
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// InjectTraceContext injects the current W3C Trace Context into metadata.
func InjectTraceContext(ctx context.Context, metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	if len(carrier) > 0 {
		traceCtx := make(map[string]interface{})
		for k, v := range carrier {
			traceCtx[k] = v
		}
		metadata["trace_context"] = traceCtx
	}
	return metadata
}

// TracingMiddleware wraps an agent so every Process call runs inside a
// span, with parent context extracted from message metadata.
type TracingMiddleware struct {
	agent    fitkit.Agent
	spanName string
	tracer   trace.Tracer
}

var _ fitkit.Agent = (*TracingMiddleware)(nil)

// NewTracingMiddleware creates a new tracing middleware.
func NewTracingMiddleware(agent fitkit.Agent, spanName string) *TracingMiddleware {
	if spanName == "" {
		spanName = fmt.Sprintf("agent.%s.process", agent.Name())
	}
	return &TracingMiddleware{
		agent:    agent,
		spanName: spanName,
		tracer:   GetTracer("fitkit.observability"),
	}
}

// Name returns the wrapped agent's name.
func (t *TracingMiddleware) Name() string {
	return t.agent.Name()
}

// Capabilities returns the wrapped agent's capabilities.
func (t *TracingMiddleware) Capabilities() []string {
	return t.agent.Capabilities()
}

// Introspect returns the wrapped agent's introspection result.
func (t *TracingMiddleware) Introspect() *fitkit.IntrospectionResult {
	return t.agent.Introspect()
}

// Process runs the wrapped agent inside a span.
func (t *TracingMiddleware) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	if message.Metadata != nil {
		ctx = ExtractTraceContext(ctx, message.Metadata)
	}

	ctx, span := t.tracer.Start(ctx, t.spanName, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(
		attribute.String("agent.name", t.agent.Name()),
		attribute.String("message.role", message.Role),
		attribute.Int("message.content_length", len(message.Content)),
		attribute.Int("message.tool_calls", len(message.ToolCalls)),
	)

	response, err := t.agent.Process(ctx, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")

	response.Metadata = InjectTraceContext(ctx, response.Metadata)
	return response, nil
}

// ShutdownTracing flushes and shuts down the global tracer provider.
func ShutdownTracing(ctx context.Context) error {
	if globalTracerProvider != nil {
		return globalTracerProvider.Shutdown(ctx)
	}
	return nil
}
