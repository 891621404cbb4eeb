// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/ik5/audxtract/audio"
)

var (
	// ErrNotVorbis is returned when the input is not an Ogg stream carrying a
	// Vorbis bitstream.
	ErrNotVorbis = fmt.Errorf("%w: not an Ogg Vorbis stream", audio.ErrDecode)

	// ErrCorrupt is returned when a packet fails to decode mid-stream.
	ErrCorrupt = fmt.Errorf("%w: corrupt Ogg Vorbis stream", audio.ErrDecode)
)
