// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/audxtract/internal/audiotest"
)

func TestRemixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float32
		target int
		want   []float32 // one output frame
	}{
		{"stereo to mono", []float32{0.2, 0.6}, 1, []float32{0.4}},
		{"quad to mono", []float32{0.1, 0.2, 0.3, 0.4}, 1, []float32{0.25}},
		{"mono to stereo", []float32{0.7}, 2, []float32{0.7, 0.7}},
		{"stereo to quad", []float32{0.1, -0.1}, 4, []float32{0.1, -0.1, 0.1, -0.1}},
		{"five to stereo", []float32{0.1, 0.2, 0.3, 0.4, 0.5}, 2, []float32{0.3, 0.3}},
		{"passthrough", []float32{0.1, 0.2}, 2, []float32{0.1, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewChannelSource(8000, 10, tt.values...)
			m, err := NewRemixer(src, tt.target)
			if err != nil {
				t.Fatalf("NewRemixer() error = %v", err)
			}

			if m.Channels() != tt.target || m.SampleRate() != 8000 {
				t.Fatalf("format = %d ch @ %d Hz", m.Channels(), m.SampleRate())
			}

			got := drain(t, m, 4)
			if len(got) != 10*tt.target {
				t.Fatalf("len = %d, want %d", len(got), 10*tt.target)
			}

			for f := range 10 {
				for c, want := range tt.want {
					v := got[f*tt.target+c]
					if math.Abs(float64(v-want)) > 1e-6 {
						t.Fatalf("frame %d ch %d = %v, want %v", f, c, v, want)
					}
				}
			}
		})
	}
}

func TestRemixer_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewRemixer(audiotest.NewSilentSource(8000, 2, 1), 0); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("NewRemixer(0) error = %v, want ErrInvalidBuffer", err)
	}

	m := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 10))
	if n, err := m.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}

	st, _ := NewRemixer(audiotest.NewSilentSource(8000, 1, 10), 2)
	if _, err := st.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples(3) error = %v, want ErrInvalidDstSize", err)
	}
}

func TestFoldCount(t *testing.T) {
	t.Parallel()

	// 5 channels into 2: outputs get {0,2,4} and {1,3}.
	if got := foldCount(5, 2, 0); got != 3 {
		t.Errorf("foldCount(5,2,0) = %d, want 3", got)
	}
	if got := foldCount(5, 2, 1); got != 2 {
		t.Errorf("foldCount(5,2,1) = %d, want 2", got)
	}
}
