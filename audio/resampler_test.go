// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audxtract/internal/audiotest"
)

func drain(t testing.TB, src Source, block int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, block*src.Channels())

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(audiotest.NewSilentSource(44100, 2, 1000), 8000)

	if resampler.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", resampler.SampleRate())
	}

	if resampler.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", resampler.Channels())
	}
}

func TestResampler_SameRateIsExact(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(8000, 2, 1000, 440)
	want := drain(t, audiotest.NewSineSource(8000, 2, 1000, 440), 256)
	got := drain(t, NewResampler(src, 8000), 100)

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		srcRate    int
		dstRate    int
		frames     int
		channels   int
		wantFrames int
	}{
		{"downsample 44.1k to 8k", 44100, 8000, 44100, 1, 8000},
		{"upsample 8k to 16k", 8000, 16000, 800, 2, 1600},
		{"upsample 22.05k to 48k", 22050, 48000, 22050, 1, 48000},
		{"downsample 48k to 16k", 48000, 16000, 4800, 2, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.srcRate, tt.channels, tt.frames, 440)
			got := drain(t, NewResampler(src, tt.dstRate), 1024)
			frames := len(got) / tt.channels

			if diff := frames - tt.wantFrames; diff < -1 || diff > 1 {
				t.Errorf("frames = %d, want %d±1", frames, tt.wantFrames)
			}
		})
	}
}

func TestResampler_ConstantStaysConstant(t *testing.T) {
	t.Parallel()

	for _, dst := range []int{8000, 16000, 48000} {
		src := audiotest.NewConstantSource(22050, 1, 2205, 0.5)
		for i, v := range drain(t, NewResampler(src, dst), 333) {
			if math.Abs(float64(v-0.5)) > 1e-5 {
				t.Fatalf("rate %d: sample %d = %v, want 0.5", dst, i, v)
			}
		}
	}
}

func TestResampler_Deterministic(t *testing.T) {
	t.Parallel()

	a := drain(t, NewResampler(audiotest.NewSineSource(44100, 2, 9000, 1000), 16000), 512)
	b := drain(t, NewResampler(audiotest.NewSineSource(44100, 2, 9000, 1000), 16000), 77)

	if len(a) != len(b) {
		t.Fatalf("len = %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 2, 100), 16000)
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 1, 0), 16000)
	n, err := r.ReadSamples(make([]float32, 16))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v; want 0, EOF", n, err)
	}
}

func TestResampler_PropagatesErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("device gone")
	src := audiotest.NewSilentSource(8000, 1, 10000)
	src.FailAfter = 100
	src.Err = boom

	r := NewResampler(src, 16000)
	buf := make([]float32, 64)

	for {
		_, err := r.ReadSamples(buf)
		if err == nil {
			continue
		}
		if !errors.Is(err, boom) {
			t.Fatalf("ReadSamples() error = %v, want %v", err, boom)
		}
		return
	}
}

func TestResampler_Close(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 1, 10)
	if err := NewResampler(src, 16000).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if src.Closed != 1 {
		t.Errorf("source closed %d times, want 1", src.Closed)
	}
}

func BenchmarkResampler(b *testing.B) {
	buf := make([]float32, 4096)
	b.ReportAllocs()

	for range b.N {
		r := NewResampler(audiotest.NewSineSource(44100, 2, 44100, 440), 16000)
		for {
			_, err := r.ReadSamples(buf)
			if err != nil {
				break
			}
		}
	}
}
