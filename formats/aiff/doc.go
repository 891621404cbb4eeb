// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to walk the FORM chunks. AIFF
// stores big-endian signed PCM; 8, 16, 24 and 32-bit files are supported and
// normalized to float32 in [-1.0, 1.0).
//
//	buf, err := audio.DecodeBuffer(aiff.Decoder{}, file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not an AIFF file
//	}
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory
// first.
package aiff
