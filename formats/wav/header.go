// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the length of the canonical PCM WAV header.
const HeaderSize = 44

const (
	formatPCM   = 1
	bitsPerWord = 16
	bytesPerSmp = bitsPerWord / 8
)

// Header holds the fields of a canonical 16-bit PCM WAV header.
type Header struct {
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	DataSize      int
}

// Frames is the number of sample frames in the data chunk.
func (h Header) Frames() int {
	if h.BlockAlign == 0 {
		return 0
	}

	return h.DataSize / h.BlockAlign
}

// newHeader describes frames of 16-bit PCM.
func newHeader(sampleRate, channels, frames int) (Header, error) {
	if sampleRate <= 0 || int64(sampleRate) > math.MaxUint32 || channels <= 0 || channels > math.MaxUint16/bytesPerSmp {
		return Header{}, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidLayout, channels, sampleRate)
	}

	dataSize := int64(frames) * int64(channels) * bytesPerSmp
	byteRate := int64(sampleRate) * int64(channels) * bytesPerSmp
	if dataSize > math.MaxUint32-(HeaderSize-8) || byteRate > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, dataSize)
	}

	return Header{
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      int(byteRate),
		BlockAlign:    channels * bytesPerSmp,
		BitsPerSample: bitsPerWord,
		DataSize:      int(dataSize),
	}, nil
}

// put serializes h into b, which must hold HeaderSize bytes.
func (h Header) put(b []byte) {
	// RIFF header (12 bytes)
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], uint32(HeaderSize-8+h.DataSize))
	copy(b[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], 16)
	binary.LittleEndian.PutUint16(b[20:22], formatPCM)
	binary.LittleEndian.PutUint16(b[22:24], uint16(h.Channels))
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.SampleRate))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.ByteRate))
	binary.LittleEndian.PutUint16(b[32:34], uint16(h.BlockAlign))
	binary.LittleEndian.PutUint16(b[34:36], uint16(h.BitsPerSample))

	// data chunk header (8 bytes)
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], uint32(h.DataSize))
}

// ReadHeader parses the canonical 44-byte header written by this package.
// It does not walk arbitrary RIFF chunk layouts; use Decoder for that.
func ReadHeader(r io.Reader) (Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" ||
		string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return Header{}, fmt.Errorf("%w: unexpected chunk layout", ErrInvalidHeader)
	}

	if size := binary.LittleEndian.Uint32(b[16:20]); size != 16 {
		return Header{}, fmt.Errorf("%w: fmt chunk of %d bytes", ErrInvalidHeader, size)
	}

	if format := binary.LittleEndian.Uint16(b[20:22]); format != formatPCM {
		return Header{}, fmt.Errorf("%w: format tag %d", ErrInvalidHeader, format)
	}

	h := Header{
		Channels:      int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		ByteRate:      int(binary.LittleEndian.Uint32(b[28:32])),
		BlockAlign:    int(binary.LittleEndian.Uint16(b[32:34])),
		BitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
		DataSize:      int(binary.LittleEndian.Uint32(b[40:44])),
	}

	if riff := int(binary.LittleEndian.Uint32(b[4:8])); riff != HeaderSize-8+h.DataSize {
		return Header{}, fmt.Errorf("%w: RIFF size %d for %d data bytes", ErrInvalidHeader, riff, h.DataSize)
	}

	return h, nil
}
