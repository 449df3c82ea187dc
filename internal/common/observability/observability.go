package observability

import (
	"context"
	"errors"
	"time"

	"culturis/internal/common/config"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the OpenTelemetry meter and tracer providers of a process.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stageCounter   otelmetric.Int64Counter
	stageDuration  otelmetric.Float64Histogram
}

// New wires the prometheus meter exporter and, when enabled, a Jaeger span
// exporter. Exporter failures degrade to no-op instruments.
func New(serviceName string, tracing config.TracingConfig, log logger.Logger) *Observability {
	o := NewNoop()
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("prometheus exporter unavailable", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
		otel.SetMeterProvider(o.meterProvider)

		meter := o.meterProvider.Meter(serviceName)
		o.stageCounter, _ = meter.Int64Counter(
			"stages.processed",
			otelmetric.WithDescription("Number of pipeline stage executions"),
		)
		o.stageDuration, _ = meter.Float64Histogram(
			"stages.duration",
			otelmetric.WithDescription("Pipeline stage duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	if !tracing.Enabled {
		return o
	}

	spanExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(tracing.JaegerEndpoint)))
	if err != nil {
		log.Warn("jaeger exporter unavailable, tracing disabled", map[string]interface{}{"error": err})
		return o
	}

	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tracing.SampleRatio))),
	)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(serviceName)

	return o
}

// NewNoop returns an instance that records prometheus stage metrics only.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("culturis")}
}

func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// TrackStage opens a span for a pipeline stage and returns the function that
// closes it, recording duration and outcome.
func (o *Observability) TrackStage(ctx context.Context, stage string) (context.Context, func(err error)) {
	ctx, span := o.StartSpan(ctx, stage, attribute.String("culturis.stage", stage))
	start := time.Now()

	return ctx, func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		elapsed := time.Since(start)
		metrics.StageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())

		attrs := otelmetric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("outcome", outcome),
		)
		if o.stageCounter != nil {
			o.stageCounter.Add(ctx, 1, attrs)
		}
		if o.stageDuration != nil {
			o.stageDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
		}
	}
}

// Shutdown flushes pending spans and metrics.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
