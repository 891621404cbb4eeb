// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

// ErrUnsupportedBitDepth is returned for sample sizes other than 8, 16, 24
// and 32 bits.
var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")
