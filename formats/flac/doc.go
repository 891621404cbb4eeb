// SPDX-License-Identifier: EPL-2.0

// Package flac decodes native FLAC streams using github.com/mewkiz/flac.
//
// Frames are parsed one at a time, so memory use does not depend on the
// stream length. Samples of any bit depth are normalized to float32 in
// [-1.0, 1.0).
//
//	buf, err := audio.DecodeBuffer(flac.Decoder{}, file)
//
// Ogg-encapsulated FLAC is not supported.
package flac
