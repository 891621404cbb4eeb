// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"

	"github.com/ik5/audxtract/audio"
)

var (
	// ErrNotWavFile is returned when the input does not start with a
	// RIFF/WAVE header.
	ErrNotWavFile = fmt.Errorf("%w: not a WAV file", audio.ErrDecode)

	// ErrMalformed is returned for RIFF/WAVE files whose chunks cannot be
	// parsed.
	ErrMalformed = fmt.Errorf("%w: malformed WAV file", audio.ErrDecode)

	// ErrUnsupportedEncoding is returned for WAV files that do not hold
	// integer PCM.
	ErrUnsupportedEncoding = fmt.Errorf("%w: unsupported WAV encoding", audio.ErrDecode)

	// ErrInvalidLayout is returned by WriteWAV16 when the sample count does not
	// fill whole frames or the format fields are out of range.
	ErrInvalidLayout = errors.New("invalid PCM layout")

	// ErrTooLarge is returned when the PCM payload does not fit the 32-bit
	// size fields of the header.
	ErrTooLarge = errors.New("PCM data too large for WAV")

	// ErrInvalidHeader is returned by ReadHeader for anything but the
	// canonical 44-byte PCM header.
	ErrInvalidHeader = errors.New("invalid canonical WAV header")
)
