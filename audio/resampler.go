// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audxtract/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom cubic
// interpolation. Works on interleaved samples; preserves channel count.
// A one-pole low-pass filter smooths the input when downsampling.
//
// The output only depends on the input samples and the two rates, so
// rendering the same source twice yields identical samples.
type Resampler struct {
	src      Source
	srcRate  int64
	dstRate  int64
	channels int

	// window holds four consecutive source frames; output frames are
	// interpolated between window[1] and window[2]. cur is the source index
	// of window[1] and out the number of frames produced so far, so output
	// frame k sits at source position k*srcRate/dstRate without drift.
	window [4][]float32
	have   [4]bool
	cur    int64
	out    int64
	primed bool

	// block reader over src
	srcBuf []float32
	srcPos int
	srcLen int
	srcEOF bool

	useFilter   bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	block := max(src.BufSize(), 1024)
	block -= block % channels

	r := &Resampler{
		src:         src,
		srcRate:     int64(src.SampleRate()),
		dstRate:     int64(dstRate),
		channels:    channels,
		srcBuf:      make([]float32, block),
		useFilter:   src.SampleRate() > dstRate,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// nextFrame copies the next source frame into dst. It returns false once the
// source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.srcPos >= r.srcLen {
		if r.srcEOF {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.srcBuf)
		r.srcPos, r.srcLen = 0, n-n%r.channels

		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		} else if n == 0 {
			return false, fmt.Errorf("%w", io.ErrNoProgress)
		}
	}

	copy(dst, r.srcBuf[r.srcPos:r.srcPos+r.channels])
	r.srcPos += r.channels

	if r.useFilter {
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true, nil
}

// prime loads the first frame twice (edge duplication) and the two frames
// following it.
func (r *Resampler) prime() error {
	r.primed = true

	if r.useFilter {
		// Seed the filter with the first frame so it starts without a ramp.
		n, err := r.fillFirst()
		if err != nil || n == 0 {
			return err
		}
	}

	ok, err := r.nextFrame(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	copy(r.window[0], r.window[1])
	r.have[0], r.have[1] = true, true

	for i := 2; i < 4; i++ {
		if r.have[i], err = r.nextFrame(r.window[i]); err != nil {
			return err
		}
	}

	return nil
}

// fillFirst peeks the first frame into the filter state.
func (r *Resampler) fillFirst() (int, error) {
	for r.srcPos >= r.srcLen && !r.srcEOF {
		n, err := r.src.ReadSamples(r.srcBuf)
		r.srcPos, r.srcLen = 0, n-n%r.channels

		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return 0, fmt.Errorf("%w", err)
		} else if n == 0 {
			return 0, fmt.Errorf("%w", io.ErrNoProgress)
		}
	}

	if r.srcPos >= r.srcLen {
		return 0, nil
	}

	copy(r.filterState, r.srcBuf[r.srcPos:r.srcPos+r.channels])

	return r.channels, nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.have[:], r.have[1:])
	r.window[3] = first

	if !r.have[2] {
		r.have[3] = false
		return nil
	}

	var err error
	r.have[3], err = r.nextFrame(r.window[3])

	return err
}

// ReadSamples produces interleaved samples at the target rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		num := r.out * r.srcRate
		for target := num / r.dstRate; r.cur < target && r.have[1]; r.cur++ {
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.have[1] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		alpha := float32(num%r.dstRate) / float32(r.dstRate)
		for c := range r.channels {
			y1 := r.window[1][c]
			y0, y2, y3 := y1, y1, y1

			if r.have[0] {
				y0 = r.window[0][c]
			}
			if r.have[2] {
				y2 = r.window[2][c]
				y3 = y2
			}
			if r.have[3] {
				y3 = r.window[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.out++
	}

	return written * r.channels, nil
}
