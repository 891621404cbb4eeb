// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audxtract/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// frameParser is the part of flac.Stream the source needs, to allow testing.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream     frameParser
	sampleRate int
	channels   int
	scale      float32

	// block holds the deinterleaved samples of the current FLAC frame and
	// pos the next frame index to hand out.
	block [][]int32
	pos   int
	eof   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if s.pos >= s.blockLen() {
			if s.eof {
				return written, io.EOF
			}
			if err := s.next(); err != nil {
				return written, err
			}
			continue
		}

		frames := min((len(dst)-written)/s.channels, s.blockLen()-s.pos)
		for f := range frames {
			for c := range s.channels {
				dst[written+c] = float32(s.block[c][s.pos+f]) / s.scale
			}
			written += s.channels
		}
		s.pos += frames
	}

	return written, nil
}

func (s *source) blockLen() int {
	if len(s.block) == 0 {
		return 0
	}

	return len(s.block[0])
}

// next parses the following FLAC frame into block. A panic of the parser on
// a malformed frame is reported as ErrCorrupt.
func (s *source) next() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrCorrupt, p)
		}
	}()

	f, err := s.stream.ParseNext()
	if err == io.EOF {
		s.eof = true
		s.block, s.pos = nil, 0
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if len(f.Subframes) != s.channels {
		return fmt.Errorf("%w: frame has %d channels, stream %d", ErrCorrupt, len(f.Subframes), s.channels)
	}

	s.block = s.block[:0]
	for _, sub := range f.Subframes {
		s.block = append(s.block, sub.Samples)
	}
	s.pos = 0

	for c, ch := range s.block {
		if len(ch) != len(s.block[0]) {
			return fmt.Errorf("%w: subframe %d has %d samples", ErrCorrupt, c, len(ch))
		}
	}

	return nil
}

// Decoder decodes native FLAC streams with github.com/mewkiz/flac.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (src audio.Source, err error) {
	defer func() {
		if p := recover(); p != nil {
			src, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, p)
		}
	}()

	var pre [4]byte
	br := bufferedPeek(r, pre[:])
	if !IsFLAC(pre[:]) {
		return nil, ErrNotFLAC
	}

	stream, err := flac.New(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	info := stream.Info
	if info.NChannels == 0 || info.SampleRate == 0 {
		stream.Close()
		return nil, fmt.Errorf("%w: %d channels at %d Hz", audio.ErrNoAudio, info.NChannels, info.SampleRate)
	}

	if info.BitsPerSample < 4 || info.BitsPerSample > 32 {
		stream.Close()
		return nil, fmt.Errorf("%w: %d-bit samples", ErrCorrupt, info.BitsPerSample)
	}

	return &source{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      float32(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}

// bufferedPeek fills pre from r and returns a reader that yields r's full
// content, pre included.
func bufferedPeek(r io.Reader, pre []byte) io.Reader {
	n, _ := io.ReadFull(r, pre)

	return io.MultiReader(bytes.NewReader(pre[:n]), r)
}

// IsFLAC reports whether b starts with the "fLaC" stream marker.
func IsFLAC(b []byte) bool {
	return len(b) >= 4 && string(b[:4]) == "fLaC"
}
