// SPDX-License-Identifier: EPL-2.0

package audxtract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/formats"
	"github.com/ik5/audxtract/formats/wav"
	"github.com/ik5/audxtract/internal/observe"
)

// Extractor runs the offline path: decode, render, encode. It is safe for
// concurrent use; every call works on its own buffers.
type Extractor struct {
	registry *audio.Registry
	renderer audio.Renderer
	graph    audio.Graph

	log     *slog.Logger
	metrics *observe.Metrics
	tracer  trace.Tracer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry replaces the built-in decoders.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Extractor) { e.registry = r }
}

// WithGraph replaces the graph built from OfflineConfig.
func WithGraph(g audio.Graph) Option {
	return func(e *Extractor) { e.graph = slices.Clone(g) }
}

// WithLogger sets the logger; nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMeterProvider records metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Extractor) { e.metrics = observe.ForProvider(mp) }
}

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Extractor) { e.tracer = observe.Tracer(tp) }
}

// New builds an Extractor. A non-zero cfg.SampleRate adds a Resample node
// and a non-zero cfg.Channels a Remix node, in that order.
func New(cfg OfflineConfig, opts ...Option) *Extractor {
	e := &Extractor{
		registry: formats.NewRegistry(),
		renderer: audio.Renderer{MaxFrames: cfg.MaxFrames},
		graph:    GraphFor(cfg),
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	if e.tracer == nil {
		e.tracer = observe.Tracer(nil)
	}

	return e
}

// GraphFor is the processing graph described by cfg. It is empty when cfg
// keeps the source layout.
func GraphFor(cfg OfflineConfig) audio.Graph {
	var g audio.Graph
	if cfg.SampleRate > 0 {
		g = append(g, audio.Resample(cfg.SampleRate))
	}
	if cfg.Channels > 0 {
		g = append(g, audio.Remix(cfg.Channels))
	}

	return g
}

// Graph returns a copy of the processing graph.
func (e *Extractor) Graph() audio.Graph { return slices.Clone(e.graph) }

// Formats lists the container keys the Extractor can decode.
func (e *Extractor) Formats() []string { return e.registry.Formats() }

// Extract detects the container of data and converts it to PCM WAV.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]byte, error) {
	format, err := formats.Detect(data)
	if err != nil {
		e.metrics.RecordExtractError(ctx, "decode")
		return nil, err
	}

	return e.ExtractFormat(ctx, format, data)
}

// ExtractFormat converts data, a container of the given format, to PCM WAV.
//
// Errors match audio.ErrDecode when the container cannot be decoded and
// audio.ErrRender (see audio.IsRetryable) when rendering fails. Context
// errors are returned unchanged.
func (e *Extractor) ExtractFormat(ctx context.Context, format string, data []byte) (out []byte, err error) {
	ctx, span := e.tracer.Start(ctx, "audxtract.Extract", trace.WithAttributes(
		attribute.String("format", format),
		attribute.Int("input.bytes", len(data)),
	))
	defer func() { observe.EndSpan(span, err) }()

	log := observe.Logger(ctx, e.log).With(slog.String("format", format))

	buf, err := e.decode(ctx, format, data)
	if err != nil {
		e.metrics.RecordExtractError(ctx, errorKind(err))
		return nil, err
	}

	rendered, err := e.render(ctx, format, buf)
	if err != nil {
		e.metrics.RecordExtractError(ctx, errorKind(err))
		log.Warn("render failed", slog.Any("error", err), slog.Bool("retryable", audio.IsRetryable(err)))
		return nil, err
	}

	out = e.encode(ctx, format, rendered)

	log.Debug("extracted",
		slog.Int("input_bytes", len(data)),
		slog.Int("frames", rendered.Frames()),
		slog.Int("channels", rendered.Channels()),
		slog.Int("sample_rate", rendered.SampleRate()),
		slog.Int("output_bytes", len(out)),
	)

	return out, nil
}

// Decode converts data, a container of the given format, to a Buffer
// without rendering it.
func (e *Extractor) Decode(ctx context.Context, format string, data []byte) (*audio.Buffer, error) {
	return e.decode(ctx, format, data)
}

func (e *Extractor) decode(ctx context.Context, format string, data []byte) (buf *audio.Buffer, err error) {
	_, span := e.tracer.Start(ctx, "audxtract.decode")
	defer func() { observe.EndSpan(span, err) }()
	defer observe.ObserveSince(ctx, e.metrics.DecodeDuration, time.Now(), attribute.String("format", format))

	dec, ok := e.registry.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", formats.ErrUnsupportedFormat, format)
	}

	buf, err = audio.DecodeBuffer(dec, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	return buf, nil
}

func (e *Extractor) render(ctx context.Context, format string, in *audio.Buffer) (out *audio.Buffer, err error) {
	ctx, span := e.tracer.Start(ctx, "audxtract.render", trace.WithAttributes(
		attribute.Int("graph.nodes", len(e.graph)),
		attribute.Int("input.frames", in.Frames()),
	))
	defer func() { observe.EndSpan(span, err) }()
	defer observe.ObserveSince(ctx, e.metrics.RenderDuration, time.Now(), attribute.String("format", format))

	return e.renderer.Render(ctx, in, e.graph)
}

func (e *Extractor) encode(ctx context.Context, format string, b *audio.Buffer) []byte {
	_, span := e.tracer.Start(ctx, "audxtract.encode")
	defer span.End()
	defer observe.ObserveSince(ctx, e.metrics.EncodeDuration, time.Now(), attribute.String("format", format))

	out := wav.Encode(b)
	e.metrics.EncodedBytes.Add(ctx, int64(len(out)))

	return out
}

// errorKind names the metric bucket of an extraction failure.
func errorKind(err error) string {
	switch {
	case errors.Is(err, audio.ErrDecode):
		return "decode"
	case errors.Is(err, audio.ErrRender):
		return "render"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
