// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracerProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return tp, rec
}

func TestEndSpan(t *testing.T) {
	t.Parallel()

	tp, rec := newTestTracerProvider(t)
	tracer := Tracer(tp)

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil)

	_, failed := tracer.Start(context.Background(), "failed")
	EndSpan(failed, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}

	if spans[0].Status().Code != codes.Unset {
		t.Errorf("ok span status = %v, want Unset", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "boom" {
		t.Errorf("failed span status = %+v", spans[1].Status())
	}
	if len(spans[1].Events()) != 1 {
		t.Errorf("failed span events = %d, want 1 recorded error", len(spans[1].Events()))
	}
	if got := spans[0].InstrumentationScope().Name; got != scopeName {
		t.Errorf("scope = %q, want %q", got, scopeName)
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(context.Background(), base).Info("plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("log without span has trace_id: %s", buf.String())
	}

	tp, _ := newTestTracerProvider(t)
	ctx, span := Tracer(tp).Start(context.Background(), "op")
	defer span.End()

	buf.Reset()
	Logger(ctx, base).Info("traced")

	out := buf.String()
	if !strings.Contains(out, "trace_id="+span.SpanContext().TraceID().String()) {
		t.Errorf("log missing trace_id: %s", out)
	}
	if !strings.Contains(out, "span_id="+span.SpanContext().SpanID().String()) {
		t.Errorf("log missing span_id: %s", out)
	}
}

func TestLogger_NilBase(t *testing.T) {
	t.Parallel()

	if Logger(context.Background(), nil) != slog.Default() {
		t.Error("Logger(nil) should fall back to slog.Default()")
	}
}
