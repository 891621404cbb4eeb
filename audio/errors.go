// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidBuffer is returned by NewBuffer when the channel layout breaks
	// the buffer invariants.
	ErrInvalidBuffer = errors.New("invalid sample buffer")

	// ErrDecode classifies every failure to turn container bytes into PCM.
	ErrDecode = errors.New("decode failed")

	// ErrNoAudio is a decode failure for containers without a usable audio track.
	ErrNoAudio = fmt.Errorf("%w: no audio track", ErrDecode)

	// ErrRender classifies offline render failures. Only these are retryable.
	ErrRender = errors.New("render failed")
)

// RenderError reports that a render pass could not produce a complete buffer.
type RenderError struct {
	// Frames is the number of output frames the graph needed when it failed,
	// zero when unknown.
	Frames int
	// Limit is the frame ceiling of the renderer, zero when unlimited.
	Limit int
	Err   error
}

func (e *RenderError) Error() string {
	switch {
	case e.Limit > 0 && e.Frames > e.Limit:
		return fmt.Sprintf("render failed: %d frames exceed limit of %d", e.Frames, e.Limit)
	case e.Err != nil:
		return "render failed: " + e.Err.Error()
	default:
		return "render failed"
	}
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is makes every RenderError match ErrRender.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

// IsRetryable reports whether err may succeed when retried with a smaller
// input. Nothing in this module retries on its own.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRender)
}

// decodeErr classifies err as a decode failure, keeping its cause.
func decodeErr(err error) error {
	if err == nil || errors.Is(err, ErrDecode) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrDecode, err)
}
