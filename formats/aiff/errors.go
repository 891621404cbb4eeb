// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"

	"github.com/ik5/audxtract/audio"
)

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = fmt.Errorf("%w: not an AIFF file", audio.ErrDecode)

	// ErrUnsupportedBitDepth indicates a sample size other than 8, 16, 24 or
	// 32 bits.
	ErrUnsupportedBitDepth = fmt.Errorf("%w: unsupported AIFF bit depth", audio.ErrDecode)

	// ErrUnsupportedAiffLayout indicates an AIFF file whose chunks cannot be
	// decoded.
	ErrUnsupportedAiffLayout = fmt.Errorf("%w: unsupported AIFF layout", audio.ErrDecode)
)
