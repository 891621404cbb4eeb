// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/utils"
)

// writeChunk is the number of samples converted per Write call.
const writeChunk = 8192

// EncodedSize returns the exact length of the WAV stream for b.
func EncodedSize(b *audio.Buffer) int {
	return HeaderSize + b.Frames()*b.Channels()*bytesPerSmp
}

// Encode serializes b as a canonical 16-bit PCM WAV stream.
//
// Samples are interleaved frame by frame and quantized with
// utils.Float32ToInt16. Encode panics with ErrTooLarge if the PCM payload
// does not fit the 32-bit size fields.
func Encode(b *audio.Buffer) []byte {
	out := bytes.NewBuffer(make([]byte, 0, EncodedSize(b)))
	if err := WriteBuffer(out, b); err != nil {
		panic(err)
	}

	return out.Bytes()
}

// WriteBuffer streams b to w in the layout of Encode. Only header limits and
// errors of w are reported.
func WriteBuffer(w io.Writer, b *audio.Buffer) error {
	h, err := newHeader(b.SampleRate(), b.Channels(), b.Frames())
	if err != nil {
		return err
	}

	var header [HeaderSize]byte
	h.put(header[:])
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("%w", err)
	}

	channels, frames := b.Channels(), b.Frames()
	if frames == 0 {
		return nil
	}

	framesPerChunk := max(writeChunk/channels, 1)
	buf := make([]byte, min(frames, framesPerChunk)*channels*bytesPerSmp)

	for start := 0; start < frames; start += framesPerChunk {
		end := min(start+framesPerChunk, frames)
		chunk := buf[:(end-start)*channels*bytesPerSmp]

		off := 0
		for i := start; i < end; i++ {
			for c := range channels {
				binary.LittleEndian.PutUint16(chunk[off:], uint16(utils.Float32ToInt16(b.Sample(c, i))))
				off += bytesPerSmp
			}
		}

		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// WriteWAV16 writes already quantized interleaved samples as a 16-bit PCM
// WAV. len(samples) must be a multiple of channels.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrInvalidLayout, len(samples), channels)
	}

	h, err := newHeader(sampleRate, channels, len(samples)/channels)
	if err != nil {
		return err
	}

	var header [HeaderSize]byte
	h.put(header[:])
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("%w", err)
	}

	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), writeChunk)*bytesPerSmp)

	for i := 0; i < len(samples); i += writeChunk {
		chunk := samples[i:min(i+writeChunk, len(samples))]
		out := buf[:len(chunk)*bytesPerSmp]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(out[j*bytesPerSmp:], uint16(s))
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}
