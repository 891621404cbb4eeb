// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 quantizes a sample to signed 16-bit PCM.
//
// The sample is clamped to [-1,1] first. Negative values scale by 32768 and
// the rest by 32767, so -1 maps to -32768 and 1 to 32767. Halves round away
// from zero.
func Float32ToInt16(x float32) int16 {
	s := float64(x)
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	}

	if s < 0 {
		return int16(math.Round(s * 32768))
	}

	return int16(math.Round(s * 32767))
}

// Float32sToInt16s converts src into dst and returns the number of samples
// written, which is the shorter of the two lengths.
func Float32sToInt16s(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}

	return n
}
