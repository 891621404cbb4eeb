// SPDX-License-Identifier: EPL-2.0

// Package observe holds the OpenTelemetry instruments and tracing helpers
// shared by the offline extraction path and capture sessions.
//
// Tests should build a Metrics with NewMetrics and an SDK MeterProvider backed
// by a ManualReader instead of relying on the global provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// scopeName is the instrumentation scope of every audxtract instrument and
// tracer.
const scopeName = "github.com/ik5/audxtract"

// Metrics holds the metric instruments. The instruments are safe for
// concurrent use.
type Metrics struct {
	// DecodeDuration, RenderDuration and EncodeDuration track the offline
	// pipeline stages. Use with attribute "format".
	DecodeDuration metric.Float64Histogram
	RenderDuration metric.Float64Histogram
	EncodeDuration metric.Float64Histogram

	// EncodedBytes counts bytes of PCM WAV output.
	EncodedBytes metric.Int64Counter

	// ExtractErrors counts failed extractions by "kind" (decode, render,
	// canceled).
	ExtractErrors metric.Int64Counter

	// CaptureSessions counts finished capture sessions by "outcome" and
	// "reason".
	CaptureSessions metric.Int64Counter

	// CaptureChunks counts chunks appended by capture sessions.
	CaptureChunks metric.Int64Counter

	// ActiveCaptures tracks the number of running capture sessions.
	ActiveCaptures metric.Int64UpDownCounter
}

// latencyBuckets are histogram boundaries in seconds.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(scopeName)
	var err error
	met := &Metrics{}

	if met.DecodeDuration, err = m.Float64Histogram("audxtract.decode.duration",
		metric.WithDescription("Latency of container decoding."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RenderDuration, err = m.Float64Histogram("audxtract.render.duration",
		metric.WithDescription("Latency of offline rendering."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EncodeDuration, err = m.Float64Histogram("audxtract.encode.duration",
		metric.WithDescription("Latency of PCM WAV encoding."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.EncodedBytes, err = m.Int64Counter("audxtract.encode.bytes",
		metric.WithDescription("Total bytes of encoded PCM WAV output."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.ExtractErrors, err = m.Int64Counter("audxtract.extract.errors",
		metric.WithDescription("Failed extractions by error kind."),
	); err != nil {
		return nil, err
	}

	if met.CaptureSessions, err = m.Int64Counter("audxtract.capture.sessions",
		metric.WithDescription("Finished capture sessions by outcome and reason."),
	); err != nil {
		return nil, err
	}
	if met.CaptureChunks, err = m.Int64Counter("audxtract.capture.chunks",
		metric.WithDescription("Chunks recorded by capture sessions."),
	); err != nil {
		return nil, err
	}
	if met.ActiveCaptures, err = m.Int64UpDownCounter("audxtract.capture.active",
		metric.WithDescription("Number of running capture sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics built on
// otel.GetMeterProvider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = ForProvider(otel.GetMeterProvider())
	})

	return defaultMetrics
}

// ForProvider is NewMetrics that falls back to no-op instruments when mp
// rejects an instrument. A nil mp yields DefaultMetrics.
func ForProvider(mp metric.MeterProvider) *Metrics {
	if mp == nil {
		return DefaultMetrics()
	}

	m, err := NewMetrics(mp)
	if err != nil {
		otel.Handle(err)
		m, _ = NewMetrics(noop.NewMeterProvider())
	}

	return m
}

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(ctx context.Context, h metric.Float64Histogram, start time.Time, attrs ...attribute.KeyValue) {
	h.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
}

// RecordExtractError counts one failed extraction of the given kind.
func (m *Metrics) RecordExtractError(ctx context.Context, kind string) {
	m.ExtractErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordCaptureSession counts one finished capture session.
func (m *Metrics) RecordCaptureSession(ctx context.Context, outcome, reason string) {
	m.CaptureSessions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("reason", reason),
		),
	)
}
