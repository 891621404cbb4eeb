// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{name: "start", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1},
		{name: "end", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2},
		{name: "linear midpoint", y0: 0, y1: 1, y2: 2, y3: 3, x: 0.5, want: 1.5},
		{name: "linear quarter", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25},
		{name: "constant", y0: 0.5, y1: 0.5, y2: 0.5, y3: 0.5, x: 0.37, want: 0.5},
		{name: "zero", x: 0.5, want: 0},
		{name: "symmetric step", y0: -1, y1: -0.5, y2: 0.5, y3: 1, x: 0.5, want: 0},
		{name: "peak", y0: 0.5, y1: 0.9, y2: 0.7, y3: 0.3, x: 0.3, want: 0.8904, tolerance: 1e-5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestCubicInterpolate_Endpoints(t *testing.T) {
	t.Parallel()

	for i := range 100 {
		y0, y1, y2, y3 := float32(i), float32(i+1), float32(i+2), float32(i+3)

		if got := CubicInterpolate(y0, y1, y2, y3, 0); got != y1 {
			t.Errorf("x=0: got %v, want %v", got, y1)
		}
		if got := CubicInterpolate(y0, y1, y2, y3, 1); got != y2 {
			t.Errorf("x=1: got %v, want %v", got, y2)
		}
	}
}

func TestCubicInterpolate_MonotonicLinear(t *testing.T) {
	t.Parallel()

	prev := float32(math.Inf(-1))
	for i := range 11 {
		x := float32(i) / 10
		got := CubicInterpolate(1, 2, 3, 4, x)
		if got < prev {
			t.Fatalf("x=%v: %v is below previous %v", x, got, prev)
		}
		prev = got
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(1000, func() {
		_ = CubicInterpolate(0.5, 1.0, 0.8, 0.3, 0.5)
	})

	if allocs > 0 {
		t.Errorf("CubicInterpolate allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	samples := make([]float32, 8000)

	b.ReportAllocs()

	for b.Loop() {
		for j := range samples {
			samples[j] = CubicInterpolate(0.1, 0.5, 0.3, -0.2, float32(j%100)/100)
		}
	}
}
