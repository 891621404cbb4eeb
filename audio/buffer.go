// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// Buffer is an immutable in-memory multichannel PCM block.
//
// A Buffer owns its sample slices: NewBuffer takes them over and no method
// hands out a reference that could be used to mutate them. Stages pass
// buffers along by ownership transfer and always build a new Buffer for
// their output.
type Buffer struct {
	sampleRate int
	frames     int
	channels   [][]float32
}

// NewBuffer validates the layout and takes ownership of channels. Every
// channel must hold the same number of samples. Samples outside [-1,1] are
// accepted; encoders clamp them.
func NewBuffer(sampleRate int, channels [][]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, sampleRate)
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}

	frames := len(channels[0])
	for c, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrInvalidBuffer, c, len(ch), frames)
		}
	}

	return &Buffer{
		sampleRate: sampleRate,
		frames:     frames,
		channels:   channels,
	}, nil
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return len(b.channels) }
func (b *Buffer) Frames() int     { return b.frames }

// Sample returns the sample of channel c at frame i.
func (b *Buffer) Sample(c, i int) float32 { return b.channels[c][i] }

// Channel returns a copy of channel c.
func (b *Buffer) Channel(c int) []float32 {
	out := make([]float32, b.frames)
	copy(out, b.channels[c])

	return out
}

// Duration is the playback length of the buffer at its sample rate.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.frames) * time.Second / time.Duration(b.sampleRate)
}

// bufferSource streams a Buffer as interleaved frames.
type bufferSource struct {
	buf *Buffer
	pos int
}

// NewBufferSource exposes b as a Source. Reads never modify b.
func NewBufferSource(b *Buffer) Source {
	return &bufferSource{buf: b}
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return len(s.buf.channels) }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := len(s.buf.channels)
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if s.pos >= s.buf.frames {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, s.buf.frames-s.pos)
	for f := range frames {
		base := f * channels
		for c, ch := range s.buf.channels {
			dst[base+c] = ch[s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= s.buf.frames {
		return frames * channels, io.EOF
	}

	return frames * channels, nil
}

// maxStalls is how many consecutive empty reads ReadAll tolerates.
const maxStalls = 100

// ReadAll drains src into a new Buffer, deinterleaving as it goes.
// maxFrames bounds the result; zero means unbounded. When the stream holds
// more than maxFrames frames a *RenderError is returned.
func ReadAll(src Source, maxFrames int) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrNoAudio, channels, src.SampleRate())
	}

	block := max(src.BufSize(), 1024)
	block -= block % channels
	if block == 0 {
		block = channels
	}

	out := make([][]float32, channels)
	buf := make([]float32, block)
	frames := 0
	stalls := 0

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			got := n / channels
			if maxFrames > 0 && frames+got > maxFrames {
				return nil, &RenderError{Frames: frames + got, Limit: maxFrames}
			}

			for f := range got {
				base := f * channels
				for c := range channels {
					out[c] = append(out[c], buf[base+c])
				}
			}
			frames += got
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		if n > 0 {
			stalls = 0
			continue
		}

		// Guard against sources that stall without reporting EOF.
		stalls++
		if stalls >= maxStalls {
			return nil, fmt.Errorf("%w", io.ErrNoProgress)
		}
	}

	for c := range out {
		if out[c] == nil {
			out[c] = []float32{}
		}
	}

	return NewBuffer(src.SampleRate(), out)
}

// DecodeBuffer runs d over r and collects the whole stream into a Buffer.
// Every failure is classified as ErrDecode.
func DecodeBuffer(d Decoder, r io.Reader) (*Buffer, error) {
	src, err := d.Decode(r)
	if err != nil {
		return nil, decodeErr(err)
	}
	defer src.Close()

	buf, err := ReadAll(src, 0)
	if err != nil {
		return nil, decodeErr(err)
	}

	return buf, nil
}
