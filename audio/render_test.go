// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ik5/audxtract/internal/audiotest"
)

func newSineBuffer(t testing.TB, rate, channels, frames int) *Buffer {
	t.Helper()

	buf, err := NewBuffer(rate, audiotest.SineChannels(rate, channels, frames, 440))
	if err != nil {
		t.Fatal(err)
	}

	return buf
}

func equalBuffers(a, b *Buffer) bool {
	if a.SampleRate() != b.SampleRate() || a.Channels() != b.Channels() || a.Frames() != b.Frames() {
		return false
	}

	for c := range a.Channels() {
		for i := range a.Frames() {
			if math.Float32bits(a.Sample(c, i)) != math.Float32bits(b.Sample(c, i)) {
				return false
			}
		}
	}

	return true
}

func TestRender_EmptyGraphCopies(t *testing.T) {
	t.Parallel()

	in := newSineBuffer(t, 8000, 2, 5000)

	out, err := Renderer{}.Render(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if out == in {
		t.Fatal("Render() returned the input buffer")
	}
	if !equalBuffers(in, out) {
		t.Error("identity render changed the samples")
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	in := newSineBuffer(t, 44100, 2, 20000)
	graph := Graph{Gain(0.8), Resample(16000), Remix(1)}

	a, err := Renderer{}.Render(context.Background(), in, graph)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := Renderer{BlockFrames: 123}.Render(context.Background(), in, graph)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !equalBuffers(a, b) {
		t.Error("two renders of the same input differ")
	}
	if a.SampleRate() != 16000 || a.Channels() != 1 {
		t.Errorf("format = %d ch @ %d Hz, want 1 @ 16000", a.Channels(), a.SampleRate())
	}
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := newSineBuffer(t, 8000, 1, 1000)
	before := in.Channel(0)

	if _, err := (Renderer{}).Render(context.Background(), in, Graph{Gain(3)}); err != nil {
		t.Fatal(err)
	}

	for i, v := range before {
		if in.Sample(0, i) != v {
			t.Fatalf("input sample %d changed", i)
		}
	}
}

func TestRender_Gain(t *testing.T) {
	t.Parallel()

	in, _ := NewBuffer(8000, [][]float32{{0.5, -0.25, 1}})
	out, err := Renderer{}.Render(context.Background(), in, Graph{Gain(2)})
	if err != nil {
		t.Fatal(err)
	}

	want := []float32{1, -0.5, 2}
	for i, w := range want {
		if out.Sample(0, i) != w {
			t.Errorf("sample %d = %v, want %v", i, out.Sample(0, i), w)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("node exploded")
	in := newSineBuffer(t, 8000, 2, 8000)

	tests := []struct {
		name     string
		renderer Renderer
		graph    Graph
		cause    error
	}{
		{"frame limit", Renderer{MaxFrames: 4000}, nil, nil},
		{"limit after upsample", Renderer{MaxFrames: 10000}, Graph{Resample(16000)}, nil},
		{"node build error", Renderer{}, Graph{NodeFunc(func(Source) (Source, error) { return nil, boom })}, boom},
		{"bad resample rate", Renderer{}, Graph{Resample(0)}, ErrInvalidBuffer},
		{"bad remix", Renderer{}, Graph{Remix(-1)}, ErrInvalidBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.renderer.Render(context.Background(), in, tt.graph)
			if !errors.Is(err, ErrRender) {
				t.Fatalf("Render() error = %v, want ErrRender", err)
			}
			if !IsRetryable(err) {
				t.Error("render failure not retryable")
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("Render() error = %v, want cause %v", err, tt.cause)
			}
		})
	}
}

func TestRender_StageReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("stage failed")
	failing := NodeFunc(func(src Source) (Source, error) {
		m := audiotest.NewSilentSource(src.SampleRate(), src.Channels(), 100000)
		m.FailAfter = 10
		m.Err = boom
		return m, nil
	})

	_, err := Renderer{}.Render(context.Background(), newSineBuffer(t, 8000, 1, 100), Graph{failing})
	if !errors.Is(err, ErrRender) || !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want ErrRender wrapping %v", err, boom)
	}
}

func TestRender_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Renderer{}.Render(ctx, newSineBuffer(t, 8000, 1, 100), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
	if IsRetryable(err) {
		t.Error("cancellation reported as retryable")
	}
}

func BenchmarkRender(b *testing.B) {
	in := newSineBuffer(b, 44100, 2, 44100)
	graph := Graph{Resample(16000), Remix(1)}
	b.ReportAllocs()

	for range b.N {
		if _, err := (Renderer{}).Render(context.Background(), in, graph); err != nil {
			b.Fatal(err)
		}
	}
}
