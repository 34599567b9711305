package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) *MeterConfig {
	return &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	if log == nil {
		log = logger.NewNop()
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	log.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric instrument names.
const (
	MetricRequests        = "apikit.client.requests"
	MetricRequestDuration = "apikit.client.request.duration"
	MetricActiveRequests  = "apikit.client.active_requests"
	MetricErrors          = "apikit.client.errors"
)

// Metrics holds the instruments recorded for client requests.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Total number of API client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of API client requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	requestActive, err := meter.Int64UpDownCounter(MetricActiveRequests,
		metric.WithDescription("Number of in-flight API client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricActiveRequests, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Total API client errors by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context, client string) {
	m.requestActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrClientName, client)))
}

// RecordRequestEnd decrements in-flight requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, client, method string, status int, duration time.Duration) {
	m.requestActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrClientName, client)))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrClientName, client),
		attribute.String(AttrMethod, method),
		attribute.String(AttrStatusCode, statusLabel(status)),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrClientName, client),
		attribute.String(AttrMethod, method),
	))
}

// RecordError records a failed request by error type.
func (m *Metrics) RecordError(ctx context.Context, client, errType string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrClientName, client),
		attribute.String(AttrErrorType, errType),
	))
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}

// MetricsHook records request counts, durations and errors.
type MetricsHook struct {
	metrics *Metrics
	// ErrorType classifies a failed request. Defaults to the APIError kind,
	// or the Go type name for transport errors.
	ErrorType func(error) string
}

// NewMetricsHook creates a MetricsHook on meter, or the global meter when nil.
func NewMetricsHook(meter metric.Meter) (*MetricsHook, error) {
	if meter == nil {
		meter = Meter(defaultTracerName)
	}
	m, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &MetricsHook{metrics: m}, nil
}

// Before implements Hook.
func (h *MetricsHook) Before(ctx context.Context, ev *Event) context.Context {
	h.metrics.RecordRequestStart(ctx, ev.Client)
	return ctx
}

// After implements Hook.
func (h *MetricsHook) After(ctx context.Context, ev *Event) {
	h.metrics.RecordRequestEnd(ctx, ev.Client, ev.Method, ev.StatusCode, ev.Duration)
	if ev.Err != nil {
		h.metrics.RecordError(ctx, ev.Client, h.errorType(ev.Err))
	}
}

func (h *MetricsHook) errorType(err error) string {
	if h.ErrorType != nil {
		return h.ErrorType(err)
	}
	if kind, ok := apierrors.KindOf(err); ok {
		return kind.String()
	}
	return fmt.Sprintf("%T", err)
}
