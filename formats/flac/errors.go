// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"

	"github.com/ik5/audxtract/audio"
)

var (
	// ErrNotFLAC is returned when the input lacks the "fLaC" marker.
	ErrNotFLAC = fmt.Errorf("%w: not a FLAC stream", audio.ErrDecode)

	// ErrCorrupt is returned for FLAC streams whose metadata or frames
	// cannot be parsed.
	ErrCorrupt = fmt.Errorf("%w: corrupt FLAC stream", audio.ErrDecode)
)
