// SPDX-License-Identifier: EPL-2.0

// Package formats ties the container decoders together: it sniffs the
// container of a byte blob and builds a registry holding every built-in
// decoder.
package formats

import (
	"bytes"
	"fmt"

	"github.com/ik5/audxtract/audio"
	"github.com/ik5/audxtract/formats/aiff"
	"github.com/ik5/audxtract/formats/flac"
	"github.com/ik5/audxtract/formats/mp3"
	"github.com/ik5/audxtract/formats/vorbis"
	"github.com/ik5/audxtract/formats/wav"
)

// Container keys used by Detect and NewRegistry.
const (
	WAV  = "wav"
	MP3  = "mp3"
	Ogg  = "ogg"
	FLAC = "flac"
	AIFF = "aiff"
)

// ErrUnsupportedFormat is returned by Detect for containers without a
// decoder. It matches audio.ErrDecode.
var ErrUnsupportedFormat = fmt.Errorf("%w: unsupported container", audio.ErrDecode)

// NewRegistry returns a registry with every built-in decoder registered under
// its container key.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(WAV, wav.Decoder{})
	r.Register(MP3, mp3.Decoder{})
	r.Register(Ogg, vorbis.Decoder{})
	r.Register(FLAC, flac.Decoder{})
	r.Register(AIFF, aiff.Decoder{})

	return r
}

// Detect identifies the container of data from its leading bytes.
//
// Known containers that no decoder handles (MP4, WebM/Matroska) are reported
// by name inside ErrUnsupportedFormat so callers can fall back to live
// capture.
func Detect(data []byte) (string, error) {
	switch {
	case wav.IsWAV(data):
		return WAV, nil
	case aiff.IsAIFF(data):
		return AIFF, nil
	case flac.IsFLAC(data):
		return FLAC, nil
	case bytes.HasPrefix(data, []byte("OggS")):
		return Ogg, nil
	case bytes.HasPrefix(data, []byte("ID3")), isMPEGAudioFrame(data):
		return MP3, nil
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return "", fmt.Errorf("%w: mp4", ErrUnsupportedFormat)
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "", fmt.Errorf("%w: webm", ErrUnsupportedFormat)
	}

	return "", ErrUnsupportedFormat
}

// isMPEGAudioFrame reports whether data starts with a Layer III frame header.
func isMPEGAudioFrame(data []byte) bool {
	if len(data) < 4 || data[0] != 0xFF || data[1]&0xE0 != 0xE0 {
		return false
	}

	version := data[1] >> 3 & 0x03
	layer := data[1] >> 1 & 0x03
	bitrate := data[2] >> 4
	rate := data[2] >> 2 & 0x03

	return version != 0x01 && layer == 0x01 && bitrate != 0x0F && rate != 0x03
}
