// SPDX-License-Identifier: EPL-2.0

// Package wav decodes WAV files and encodes sample buffers as canonical
// 16-bit PCM WAV.
//
// # Decoding
//
// Decoder walks the RIFF chunks with github.com/go-audio/wav, so chunk order
// and unknown chunks do not matter. Integer PCM of 8, 16, 24 and 32 bits is
// supported; samples come out as float32 in [-1.0, 1.0):
//
//	buf, err := audio.DecodeBuffer(wav.Decoder{}, file)
//
// Every decode error matches audio.ErrDecode.
//
// # Encoding
//
// Encode emits a fixed 44-byte header followed by frame-interleaved
// little-endian int16 samples:
//
//	offset  size  field
//	0       4     "RIFF"
//	4       4     36 + dataSize
//	8       4     "WAVE"
//	12      4     "fmt "
//	16      4     16
//	20      2     1 (PCM)
//	22      2     channels
//	24      4     sample rate
//	28      4     sample rate * channels * 2
//	32      2     channels * 2
//	34      2     16
//	36      4     "data"
//	40      4     dataSize = frames * channels * 2
//
// Samples are clamped to [-1, 1] and quantized with utils.Float32ToInt16:
// negative values scale by 32768, the rest by 32767, halves round away from
// zero. The output length is always 44 + frames*channels*2.
//
// WriteBuffer streams the same bytes to an io.Writer and WriteWAV16 writes
// samples that are already int16. ReadHeader parses the header back.
package wav
