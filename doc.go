// SPDX-License-Identifier: EPL-2.0

// Package audxtract extracts the audio track of a media blob into a
// canonical 16-bit PCM WAV stream.
//
// Two paths produce audio. The offline path decodes the container, renders
// the samples through a deterministic processing graph and encodes them:
//
//	ex := audxtract.New(audxtract.DefaultConfig().Offline)
//	out, err := ex.Extract(ctx, data)
//	switch {
//	case errors.Is(err, audio.ErrDecode):
//	    // unsupported or corrupt container; try live capture
//	case audio.IsRetryable(err):
//	    // render ran out of room; retry once with less input
//	}
//
// Containers the decoders cannot read are recorded live through the capture
// subpackage, which plays the source and collects the device's chunks.
//
// # Supported Formats
//
// The offline path reads:
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF/AIFC via formats/aiff
//   - FLAC via formats/flac
//
// formats.Detect picks the decoder from the leading bytes.
//
// # Output
//
// The output is always a 44-byte canonical RIFF header followed by
// frame-interleaved 16-bit little-endian samples (see formats/wav).
// Samples are clamped to [-1, 1] and scaled asymmetrically: negative values
// by 32768, non-negative ones by 32767.
//
// # Batches
//
// ExtractAll converts several inputs concurrently with a bounded number of
// workers. Inputs never share buffers; a failed input does not stop the
// others.
//
// # Configuration
//
// LoadConfig reads a YAML document:
//
//	log_level: debug
//	offline:
//	  sample_rate: 16000
//	  channels: 1
//	  max_frames: 28800000
//	  concurrency: 4
//	capture:
//	  max_duration: 5m
//	  grace: 5s
package audxtract
