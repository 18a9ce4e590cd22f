package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/fitforge/fitkit/fitkit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var globalMeterProvider *sdkmetric.MeterProvider

// InitMetrics initializes OpenTelemetry metrics with a Prometheus
// reader. The metrics surface through the default Prometheus registry,
// which the serve mode exposes over HTTP.
func InitMetrics(serviceName string) (*sdkmetric.MeterProvider, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	globalMeterProvider = provider
	return provider, nil
}

// GetMeter returns a meter from the current global meter provider.
func GetMeter(name string) metric.Meter {
	return otel.Meter(name)
}

// MetricsMiddleware wraps an agent with request, error, and latency
// instrumentation.
type MetricsMiddleware struct {
	agent            fitkit.Agent
	requestCounter   metric.Int64Counter
	errorCounter     metric.Int64Counter
	latencyHistogram metric.Float64Histogram
	messageSizeHist  metric.Int64Histogram
}

var _ fitkit.Agent = (*MetricsMiddleware)(nil)

// NewMetricsMiddleware creates a new metrics middleware.
func NewMetricsMiddleware(agent fitkit.Agent) (*MetricsMiddleware, error) {
	meter := GetMeter("fitkit.observability")

	requestCounter, err := meter.Int64Counter(
		"fitkit.agent.requests",
		metric.WithDescription("Total number of agent requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"fitkit.agent.errors",
		metric.WithDescription("Total number of agent errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	latencyHistogram, err := meter.Float64Histogram(
		"fitkit.agent.latency",
		metric.WithDescription("Agent processing latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	messageSizeHist, err := meter.Int64Histogram(
		"fitkit.agent.message_size",
		metric.WithDescription("Message content size"),
		metric.WithUnit("bytes"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message size histogram: %w", err)
	}

	return &MetricsMiddleware{
		agent:            agent,
		requestCounter:   requestCounter,
		errorCounter:     errorCounter,
		latencyHistogram: latencyHistogram,
		messageSizeHist:  messageSizeHist,
	}, nil
}

// Name returns the wrapped agent's name.
func (m *MetricsMiddleware) Name() string {
	return m.agent.Name()
}

// Capabilities returns the wrapped agent's capabilities.
func (m *MetricsMiddleware) Capabilities() []string {
	return m.agent.Capabilities()
}

// Introspect returns the wrapped agent's introspection result.
func (m *MetricsMiddleware) Introspect() *fitkit.IntrospectionResult {
	return m.agent.Introspect()
}

// Process processes a message with metrics collection.
func (m *MetricsMiddleware) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	startTime := time.Now()

	attrs := []attribute.KeyValue{
		attribute.String("agent.name", m.agent.Name()),
		attribute.String("message.role", message.Role),
	}
	m.messageSizeHist.Record(ctx, int64(len(message.Content)), metric.WithAttributes(attrs...))

	response, err := m.agent.Process(ctx, message)

	latencyMs := float64(time.Since(startTime).Microseconds()) / 1000.0

	if err != nil {
		errorAttrs := append(attrs,
			attribute.String("status", "error"),
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		)
		m.requestCounter.Add(ctx, 1, metric.WithAttributes(errorAttrs...))
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(errorAttrs...))
		m.latencyHistogram.Record(ctx, latencyMs, metric.WithAttributes(errorAttrs...))
		return nil, err
	}

	successAttrs := append(attrs, attribute.String("status", "success"))
	m.requestCounter.Add(ctx, 1, metric.WithAttributes(successAttrs...))
	m.latencyHistogram.Record(ctx, latencyMs, metric.WithAttributes(successAttrs...))

	return response, nil
}

// ShutdownMetrics gracefully shuts down the meter provider.
func ShutdownMetrics(ctx context.Context) error {
	if globalMeterProvider != nil {
		return globalMeterProvider.Shutdown(ctx)
	}
	return nil
}
