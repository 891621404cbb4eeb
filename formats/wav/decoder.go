// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/internal/chunk"
	"github.com/ik5/audxtract/internal/pcm"
)

const formatExtensible = 0xFFFE

// layout bounds every chunk before go-audio allocates by its declared size.
var layout = chunk.Layout{
	Order:   binary.LittleEndian,
	Keep:    []string{"fmt "},
	Stream:  "data",
	MinSize: map[string]uint32{"fmt ": 16},
}

// Decoder reads integer PCM WAV files of 8, 16, 24 or 32 bits with any chunk
// order. It satisfies audio.Decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (src audio.Source, err error) {
	defer func() {
		if p := recover(); p != nil {
			src, err = nil, fmt.Errorf("%w: %v", ErrMalformed, p)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading wav data: %w", audio.ErrDecode, err)
	}
	if !IsWAV(data) {
		return nil, ErrNotWavFile
	}

	rs, err := layout.Rebuild(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if dec.NumChans == 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrMalformed)
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: missing data chunk", audio.ErrNoAudio)
	}

	ps, err := pcm.NewSource(dec, pcm.Layout{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Unsigned8:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err)
	}

	return ps, nil
}

// IsWAV reports whether b starts with a RIFF/WAVE preamble.
func IsWAV(b []byte) bool {
	return len(b) >= chunk.Preamble &&
		string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}
