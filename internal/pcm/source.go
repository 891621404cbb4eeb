// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders to audio.Source.
package pcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audxtract/audio"
)

// IntReader is implemented by the go-audio wav and aiff decoders.
type IntReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Layout describes the integer samples an IntReader yields.
type Layout struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Unsigned8 marks 8-bit samples stored with a 128 offset (WAV).
	Unsigned8 bool
}

// Scale returns the divisor that maps full-scale integers to [-1, 1).
func (l Layout) Scale() float32 {
	return float32(int64(1) << (l.BitDepth - 1))
}

// Source streams an IntReader as normalized float32 samples.
type Source struct {
	r      IntReader
	layout Layout
	scale  float32
	buf    *goaudio.IntBuffer

	// pending holds samples of an incomplete trailing frame.
	pending []int
	eof     bool
}

// NewSource wraps r. The layout must have a positive rate and channel count
// and a bit depth of 8, 16, 24 or 32.
func NewSource(r IntReader, layout Layout) (*Source, error) {
	if layout.SampleRate <= 0 || layout.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz",
			audio.ErrNoAudio, layout.Channels, layout.SampleRate)
	}

	switch layout.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedBitDepth, layout.BitDepth)
	}

	return &Source{
		r:      r,
		layout: layout,
		scale:  layout.Scale(),
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: layout.Channels,
				SampleRate:  layout.SampleRate,
			},
			SourceBitDepth: layout.BitDepth,
		},
	}, nil
}

func (s *Source) SampleRate() int { return s.layout.SampleRate }
func (s *Source) Channels() int   { return s.layout.Channels }
func (s *Source) Close() error    { return nil }
func (s *Source) BufSize() int {
	if n := cap(s.buf.Data); n > 0 {
		return n
	}

	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	channels := s.layout.Channels
	if len(dst)%channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	if s.eof {
		return 0, io.EOF
	}

	if len(dst) == 0 {
		return 0, nil
	}

	want := len(dst) - len(s.pending)
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.r.PCMBuffer(s.buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	// go-audio decoders report the end of data as an empty read or io.EOF.
	if n == 0 || err == io.EOF {
		s.eof = true
	}

	samples := append(s.pending, s.buf.Data[:n]...)
	whole := len(samples) - len(samples)%channels

	for i, v := range samples[:whole] {
		dst[i] = s.normalize(v)
	}

	if s.eof {
		// A trailing partial frame is dropped.
		s.pending = s.pending[:0]
		return whole, io.EOF
	}

	s.pending = append(s.pending[:0], samples[whole:]...)

	return whole, nil
}

func (s *Source) normalize(v int) float32 {
	if s.layout.BitDepth == 8 && s.layout.Unsigned8 {
		v -= 128
	}

	return float32(v) / s.scale
}
