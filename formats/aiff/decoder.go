// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/internal/chunk"
	"github.com/ik5/audxtract/internal/pcm"
)

// layout bounds every chunk before go-audio allocates by its declared size.
var layout = chunk.Layout{
	Order:   binary.BigEndian,
	Keep:    []string{"COMM", "FVER"},
	Stream:  "SSND",
	MinSize: map[string]uint32{"COMM": 18},
}

// Decoder reads uncompressed AIFF files of 8, 16, 24 or 32 bits using
// github.com/go-audio/aiff. It satisfies audio.Decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (src audio.Source, err error) {
	defer func() {
		if p := recover(); p != nil {
			src, err = nil, fmt.Errorf("%w: %v", ErrUnsupportedAiffLayout, p)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading aiff data: %w", audio.ErrDecode, err)
	}
	if !IsAIFF(data) {
		return nil, ErrNotAiffFile
	}

	rs, err := layout.Rebuild(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrUnsupportedAiffLayout
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	ps, err := pcm.NewSource(dec, pcm.Layout{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   int(dec.BitDepth),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}

	return ps, nil
}

// IsAIFF reports whether b starts with a FORM/AIFF or FORM/AIFC preamble.
func IsAIFF(b []byte) bool {
	if len(b) < chunk.Preamble || string(b[0:4]) != "FORM" {
		return false
	}

	kind := string(b[8:12])

	return kind == "AIFF" || kind == "AIFC"
}
