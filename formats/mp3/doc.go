// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams.
//
// Decoding is done by github.com/hajimehoshi/go-mp3. The resulting
// audio.Source is always stereo at the stream's sample rate with samples in
// [-1.0, 1.0):
//
//	buf, err := audio.DecodeBuffer(mp3.Decoder{}, file)
//
// Use audio.Remix(1) in a render graph to fold the output to mono. Streams
// that hold no decodable frame fail with ErrNotMP3, which matches
// audio.ErrDecode. A trailing partial frame is dropped.
package mp3
