// Package observe provides OpenTelemetry metrics and tracing for the scan,
// locate and transform pipeline.
//
// Metrics go through the OpenTelemetry Metrics API. [InitProvider] bridges
// them to Prometheus so `serve` can expose /metrics. Tests should build a
// [Metrics] with [NewMetrics] over their own [metric.MeterProvider].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/mj1618/composebox"

// Metrics holds the metric instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// ScanDuration is the wall time of one application scan.
	// Attributes: app, status.
	ScanDuration metric.Float64Histogram

	// ScanElements is the number of elements per scan. Attributes: app.
	ScanElements metric.Int64Histogram

	// LocateResults counts locate outcomes. Attributes: app, strategy.
	LocateResults metric.Int64Counter

	// TransformDuration is LLM transform latency. Attributes: provider, mode.
	TransformDuration metric.Float64Histogram

	// TransformErrors counts failed transforms. Attributes: provider, mode.
	TransformErrors metric.Int64Counter

	// TrackerUpdates counts coordinator updates. Attributes: kind.
	TrackerUpdates metric.Int64Counter
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

var elementBuckets = []float64{
	10, 50, 100, 250, 500, 1000, 2500, 5000, 10000,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ScanDuration, err = m.Float64Histogram("composebox.scan.duration",
		metric.WithDescription("Latency of one accessibility tree scan."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScanElements, err = m.Int64Histogram("composebox.scan.elements",
		metric.WithDescription("Number of elements recorded per scan."),
		metric.WithExplicitBucketBoundaries(elementBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LocateResults, err = m.Int64Counter("composebox.locate.result",
		metric.WithDescription("Locate outcomes by application and strategy."),
	); err != nil {
		return nil, err
	}
	if met.TransformDuration, err = m.Float64Histogram("composebox.transform.duration",
		metric.WithDescription("Latency of LLM text transforms."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TransformErrors, err = m.Int64Counter("composebox.transform.errors",
		metric.WithDescription("Failed LLM text transforms."),
	); err != nil {
		return nil, err
	}
	if met.TrackerUpdates, err = m.Int64Counter("composebox.tracker.updates",
		metric.WithDescription("Updates published by the tracking coordinator by kind."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance over the global meter
// provider, created on first call.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordScan records one scan.
func (m *Metrics) RecordScan(ctx context.Context, app string, d time.Duration, elements int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ScanDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("app", app),
		attribute.String("status", status),
	))
	if err == nil {
		m.ScanElements.Record(ctx, int64(elements), metric.WithAttributes(attribute.String("app", app)))
	}
}

// RecordLocate counts a locate outcome.
func (m *Metrics) RecordLocate(ctx context.Context, app, strategy string) {
	m.LocateResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("app", app),
		attribute.String("strategy", strategy),
	))
}

// RecordTransform records a transform and counts it as failed when err is set.
func (m *Metrics) RecordTransform(ctx context.Context, provider, mode string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("mode", mode),
	)
	m.TransformDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.TransformErrors.Add(ctx, 1, attrs)
	}
}

// RecordUpdate counts a coordinator update.
func (m *Metrics) RecordUpdate(ctx context.Context, kind string) {
	m.TrackerUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
