package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/optillm-go/optillm/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelProvider implements core.Telemetry with OpenTelemetry, exporting
// both traces and metrics via OTLP/HTTP from a single provider.
type OTelProvider struct {
	tracer         trace.Tracer
	meter          metric.Meter
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider

	instMu      sync.Mutex
	histograms  map[string]metric.Float64Histogram
	counters    map[string]metric.Float64Counter

	shutdownOnce sync.Once
	shutdown     bool
	mu           sync.RWMutex

	logger *Logger
}

// NewOTelProvider builds the full telemetry pipeline against an OTLP/HTTP
// endpoint (typically port 4318).
func NewOTelProvider(serviceName, endpoint string) (*OTelProvider, error) {
	logger := Default()

	if serviceName == "" {
		return nil, fmt.Errorf("service name cannot be empty")
	}
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	ctx := context.Background()

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter for endpoint %s: %w", endpoint, err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metric exporter for endpoint %s: %w", endpoint, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second)),
		),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("telemetry provider created", map[string]interface{}{
		"service": serviceName, "endpoint": endpoint,
	})

	return &OTelProvider{
		tracer:         tp.Tracer("optillm"),
		meter:          mp.Meter("optillm"),
		traceProvider:  tp,
		metricProvider: mp,
		histograms:     make(map[string]metric.Float64Histogram),
		counters:       make(map[string]metric.Float64Counter),
		logger:         logger,
	}, nil
}

// StartSpan implements core.Telemetry.
func (o *OTelProvider) StartSpan(ctx context.Context, name string) (context.Context, core.Span) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.shutdown || o.tracer == nil {
		return ctx, noOpSpan{}
	}
	ctx, span := o.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

// RecordMetric implements core.Telemetry, routing by name: a name that
// starts or ends with duration, latency, time or _ms → histogram,
// everything else → counter.
func (o *OTelProvider) RecordMetric(name string, value float64, labels map[string]string) {
	o.mu.RLock()
	shutdown := o.shutdown
	o.mu.RUnlock()
	if shutdown {
		return
	}

	var attrs []attribute.KeyValue
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	ctx := context.Background()

	if contains(name, "duration", "latency", "time", "_ms") {
		h := o.histogram(name)
		if h != nil {
			h.Record(ctx, value, metric.WithAttributes(attrs...))
		}
		return
	}
	c := o.counter(name)
	if c != nil {
		c.Add(ctx, value, metric.WithAttributes(attrs...))
	}
}

func (o *OTelProvider) histogram(name string) metric.Float64Histogram {
	o.instMu.Lock()
	defer o.instMu.Unlock()
	if h, ok := o.histograms[name]; ok {
		return h
	}
	h, err := o.meter.Float64Histogram(name)
	if err != nil {
		o.logger.Warn("failed to create histogram instrument", map[string]interface{}{"name": name, "error": err.Error()})
		return nil
	}
	o.histograms[name] = h
	return h
}

func (o *OTelProvider) counter(name string) metric.Float64Counter {
	o.instMu.Lock()
	defer o.instMu.Unlock()
	if c, ok := o.counters[name]; ok {
		return c
	}
	c, err := o.meter.Float64Counter(name)
	if err != nil {
		o.logger.Warn("failed to create counter instrument", map[string]interface{}{"name": name, "error": err.Error()})
		return nil
	}
	o.counters[name] = c
	return c
}

func contains(name string, substrings ...string) bool {
	for _, s := range substrings {
		if len(name) >= len(s) && (name[len(name)-len(s):] == s || name[:len(s)] == s) {
			return true
		}
	}
	return false
}

// Shutdown gracefully drains both providers. Idempotent.
func (o *OTelProvider) Shutdown(ctx context.Context) (shutdownErr error) {
	o.shutdownOnce.Do(func() {
		o.mu.Lock()
		o.shutdown = true
		o.mu.Unlock()

		var errs []error
		if o.metricProvider != nil {
			if err := o.metricProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("metric provider: %w", err))
			}
		}
		if o.traceProvider != nil {
			if err := o.traceProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("trace provider: %w", err))
			}
		}
		if len(errs) > 0 {
			shutdownErr = fmt.Errorf("shutdown errors: %v", errs)
		}
	})
	return shutdownErr
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *otelSpan) RecordError(err error) { s.span.RecordError(err) }

type noOpSpan struct{}

func (noOpSpan) End()                             {}
func (noOpSpan) SetAttribute(string, interface{}) {}
func (noOpSpan) RecordError(error)                {}
