// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams using
// github.com/jfreymuth/oggvorbis.
//
// The decoder keeps the stream's channel count and sample rate. Vorbis
// decodes to float natively, so samples are passed through as the library
// produces them, already limited to [-1.0, 1.0].
//
//	buf, err := audio.DecodeBuffer(vorbis.Decoder{}, file)
//	if errors.Is(err, vorbis.ErrNotVorbis) {
//	    // not an Ogg Vorbis stream
//	}
package vorbis
