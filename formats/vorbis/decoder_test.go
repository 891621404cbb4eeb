// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audxtract/audio"
)

// mockOggVorbisReader simulates oggvorbis.Reader: Read returns whole frames
// and at most step samples per call.
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	step       int
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if len(m.samples) == 0 {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}

	n := len(buf)
	if m.step > 0 {
		n = min(n, m.step)
	}
	n -= n % m.channels
	n = copy(buf[:n], m.samples)
	m.samples = m.samples[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "text", data: []byte("This is not Ogg Vorbis data")},
		{name: "empty", data: nil},
		{name: "ogg capture without vorbis", data: append([]byte("OggS"), make([]byte, 60)...)},
		{name: "ogg page of junk", data: append([]byte("OggS\x00\x02"), bytes.Repeat([]byte{0xFF}, 80)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotVorbis) || !errors.Is(err, audio.ErrDecode) {
				t.Errorf("Decode() error = %v, want ErrNotVorbis", err)
			}
		})
	}
}

func TestNewSource_NoAudio(t *testing.T) {
	t.Parallel()

	_, err := newSource(&mockOggVorbisReader{sampleRate: 44100})
	if !errors.Is(err, audio.ErrNoAudio) {
		t.Errorf("newSource() error = %v, want ErrNoAudio", err)
	}
}

func TestSource_ReadAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		step     int
		frames   int
	}{
		{name: "mono", channels: 1, frames: 1000},
		{name: "stereo", channels: 2, frames: 1000},
		{name: "5.1 small reads", channels: 6, step: 18, frames: 257},
		{name: "stereo large", channels: 2, frames: 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]float32, tt.frames*tt.channels)
			for i := range samples {
				samples[i] = float32(i%200)/100 - 1
			}
			mock := &mockOggVorbisReader{
				sampleRate: 48000,
				channels:   tt.channels,
				samples:    append([]float32(nil), samples...),
				step:       tt.step,
			}

			src, err := newSource(mock)
			if err != nil {
				t.Fatalf("newSource() error = %v", err)
			}

			buf, err := audio.ReadAll(src, 0)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}

			if buf.Channels() != tt.channels || buf.Frames() != tt.frames || buf.SampleRate() != 48000 {
				t.Fatalf("got %d ch, %d frames, %d Hz; want %d, %d, 48000",
					buf.Channels(), buf.Frames(), buf.SampleRate(), tt.channels, tt.frames)
			}

			for i, want := range samples {
				if got := buf.Sample(i%tt.channels, i/tt.channels); got != want {
					t.Fatalf("sample %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestSource_ReadSamples_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt packet")
	src, err := newSource(&mockOggVorbisReader{sampleRate: 8000, channels: 2, err: boom})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples(odd) error = %v, want ErrInvalidDstSize", err)
	}
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

// brokenPacketReader fails the way oggvorbis does on some malformed packets.
type brokenPacketReader struct{ mockOggVorbisReader }

func (*brokenPacketReader) Read([]float32) (int, error) {
	var table []byte
	return int(table[255]), nil
}

func TestSource_ReadSamples_DecoderPanic(t *testing.T) {
	t.Parallel()

	src, err := newSource(&brokenPacketReader{mockOggVorbisReader{sampleRate: 8000, channels: 1}})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	n, err := src.ReadSamples(make([]float32, 16))
	if n != 0 || !errors.Is(err, ErrCorrupt) || !errors.Is(err, audio.ErrDecode) {
		t.Errorf("ReadSamples() = %d, %v; want 0, ErrCorrupt", n, err)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockOggVorbisReader{sampleRate: 22050, channels: 2})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	if src.SampleRate() != 22050 || src.Channels() != 2 || src.BufSize() <= 0 {
		t.Errorf("metadata = %d Hz, %d ch, buf %d", src.SampleRate(), src.Channels(), src.BufSize())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]float32, 44100*2)
	dst := make([]float32, 4096)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		src := &source{
			dec:        &mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: samples},
			sampleRate: 44100,
			channels:   2,
		}
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
