// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audxtract/audio"
)

// go-mp3 always yields interleaved stereo int16 little-endian.
const (
	channels   = 2
	frameBytes = channels * 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// pending is the number of bytes of an incomplete frame kept at the
	// start of buf.
	pending int
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // return sample capacity, not bytes

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		grown := make([]byte, bytesNeeded)
		copy(grown, s.buf[:s.pending])
		s.buf = grown
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf[s.pending:])
	total := s.pending + n
	whole := total - total%frameBytes

	samples := whole / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}

	s.pending = copy(s.buf, s.buf[whole:total])

	switch {
	case err == io.EOF:
		// A trailing partial frame is dropped.
		s.pending = 0
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("%w", err)
	}

	return samples, nil
}

// Decoder decodes MPEG-1/2 Layer III streams with github.com/hajimehoshi/go-mp3.
// The output is always stereo.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3, err)
	}

	if dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", audio.ErrNoAudio, dec.SampleRate())
	}

	return newSource(dec), nil
}
