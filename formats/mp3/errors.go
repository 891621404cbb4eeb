// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"

	"github.com/ik5/audxtract/audio"
)

// ErrNotMP3 is returned when no MPEG audio frame can be decoded.
var ErrNotMP3 = fmt.Errorf("%w: not an MP3 stream", audio.ErrDecode)
