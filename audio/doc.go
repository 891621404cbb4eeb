// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM building blocks of the extraction core.
//
// This package contains:
//   - Source and Decoder interfaces for streaming decoded audio
//   - Registry for decoder lookup by container key
//   - Buffer, the immutable multichannel sample buffer
//   - Renderer and Graph for deterministic offline rendering
//   - Resampler and Remixer processing stages
//
// # Sample Buffer
//
// A Buffer holds one float32 slice per channel, all of the same length:
//
//	buf, err := audio.NewBuffer(8000, [][]float32{left, right})
//
// NewBuffer takes ownership of the slices. Buffers are never modified after
// construction; every stage produces a new one.
//
// # Decoding
//
// DecodeBuffer turns container bytes into a Buffer using any Decoder:
//
//	buf, err := audio.DecodeBuffer(wav.Decoder{}, bytes.NewReader(data))
//	if errors.Is(err, audio.ErrDecode) {
//	    // corrupt, unsupported or missing audio track
//	}
//
// # Offline Rendering
//
// A Renderer pulls a Buffer through a Graph of nodes:
//
//	r := audio.Renderer{MaxFrames: 48000 * 600}
//	out, err := r.Render(ctx, buf, audio.Graph{audio.Resample(16000), audio.Remix(1)})
//	if audio.IsRetryable(err) {
//	    // resource limit hit; the caller may retry once with less input
//	}
//
// An empty Graph returns an identical copy. Rendering is deterministic:
// the same input and graph always produce the same samples.
//
// # Sample Format
//
// Samples are float32, nominally in [-1.0, 1.0]. Values outside that range
// are carried through untouched and clamped by encoders.
package audio
