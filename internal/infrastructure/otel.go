package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// OTelConfig holds OpenTelemetry initialization options
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TracingEnabled bool
	MetricsEnabled bool
}

// DefaultOTelConfig returns the default observability configuration
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    "licensed",
		ServiceVersion: "1.0.0",
		TracingEnabled: true,
		MetricsEnabled: true,
	}
}

// OTelProviders bundles the configured tracer and meter providers together
// with the Prometheus scrape handler exposed on /metrics.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
}

// InitializeOTel sets up tracing and metrics providers and registers them
// as the global OpenTelemetry providers.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	providers := &OTelProviders{}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	if cfg.TracingEnabled {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		providers.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(providers.TracerProvider)
	}

	if cfg.MetricsEnabled {
		registry := promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		providers.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(providers.MeterProvider)
		providers.Meter = providers.MeterProvider.Meter(cfg.ServiceName)
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	} else {
		providers.Meter = otel.Meter(cfg.ServiceName)
	}

	logger.Info("observability initialized",
		slog.Bool("tracing", cfg.TracingEnabled),
		slog.Bool("metrics", cfg.MetricsEnabled),
	)

	return providers, nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from context,
// falling back to the request-scoped trace ID.
func TraceIDFromContext(ctx context.Context) string {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return GetTraceID(ctx)
}

// LicenseMetrics holds the license-domain instruments.
type LicenseMetrics struct {
	ChecksTotal    metric.Int64Counter
	CheckDuration  metric.Float64Histogram
	MutationsTotal metric.Int64Counter
}

// NewLicenseMetrics creates the license-domain instruments on the given meter.
func NewLicenseMetrics(meter metric.Meter) (*LicenseMetrics, error) {
	m := &LicenseMetrics{}
	var err error

	m.ChecksTotal, err = meter.Int64Counter("license_checks_total",
		metric.WithDescription("License validation checks by lookup variant and verdict"))
	if err != nil {
		return nil, err
	}

	m.CheckDuration, err = meter.Float64Histogram("license_check_duration_seconds",
		metric.WithDescription("License validation check latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.MutationsTotal, err = meter.Int64Counter("license_mutations_total",
		metric.WithDescription("License create/update operations by outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCheck records one validation check.
func (m *LicenseMetrics) RecordCheck(ctx context.Context, lookup, verdict string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("lookup", lookup),
		attribute.String("verdict", verdict),
	)
	m.ChecksTotal.Add(ctx, 1, attrs)
	m.CheckDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMutation records one create or update operation.
func (m *LicenseMetrics) RecordMutation(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.MutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
