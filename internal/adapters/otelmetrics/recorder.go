// Package otelmetrics exports tracker counters to an OTEL Collector.
package otelmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/agentboard/internal/domain"
	"github.com/emiliopalmerini/agentboard/internal/ports"
)

const (
	serviceName    = "agentboard"
	serviceVersion = "1.0.0"
)

// Config selects the collector endpoint. An empty endpoint disables
// the recorder.
type Config struct {
	Endpoint string
	Insecure bool
}

// Recorder implements ports.MetricsRecorder on top of an OTLP gRPC
// exporter.
type Recorder struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	eventsTotal      metric.Int64Counter
	transitionsTotal metric.Int64Counter
}

// NewRecorder connects to the collector and registers the instruments,
// including an observable gauge of currently active sessions backed by
// the given count function.
func NewRecorder(ctx context.Context, cfg Config, countActive func(context.Context) (int64, error)) (*Recorder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("metrics endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	eventsTotal, err := meter.Int64Counter(
		"agentboard_events_total",
		metric.WithDescription("Lifecycle events ingested"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	transitionsTotal, err := meter.Int64Counter(
		"agentboard_status_transitions_total",
		metric.WithDescription("Session status transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transitions counter: %w", err)
	}

	_, err = meter.Int64ObservableGauge(
		"agentboard_active_sessions",
		metric.WithDescription("Sessions currently working or awaiting approval"),
		metric.WithUnit("{session}"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			n, err := countActive(ctx)
			if err != nil {
				return err
			}
			o.Observe(n)
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active sessions gauge: %w", err)
	}

	return &Recorder{
		provider:         provider,
		meter:            meter,
		eventsTotal:      eventsTotal,
		transitionsTotal: transitionsTotal,
	}, nil
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

// EventIngested counts one inbound lifecycle event by name.
func (r *Recorder) EventIngested(eventName string) {
	r.eventsTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("event_name", eventName)))
}

// StatusTransition counts one session status change by resulting status.
func (r *Recorder) StatusTransition(status domain.Status) {
	r.transitionsTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("status", string(status))))
}

// Close shuts down the provider and flushes pending metrics.
func (r *Recorder) Close(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
