// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrNoAudio_IsDecode(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrNoAudio, ErrDecode) {
		t.Error("ErrNoAudio does not match ErrDecode")
	}

	if errors.Is(ErrDecode, ErrNoAudio) {
		t.Error("ErrDecode should not match ErrNoAudio")
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	cause := errors.New("out of memory")

	tests := []struct {
		name    string
		err     *RenderError
		wantMsg string
	}{
		{"limit", &RenderError{Frames: 20, Limit: 10}, "render failed: 20 frames exceed limit of 10"},
		{"cause", &RenderError{Err: cause}, "render failed: out of memory"},
		{"bare", &RenderError{}, "render failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}

			wrapped := fmt.Errorf("extract: %w", tt.err)
			if !errors.Is(wrapped, ErrRender) {
				t.Error("wrapped RenderError does not match ErrRender")
			}
			if !IsRetryable(wrapped) {
				t.Error("IsRetryable() = false for RenderError")
			}

			var re *RenderError
			if !errors.As(wrapped, &re) || re != tt.err {
				t.Error("errors.As() did not recover the RenderError")
			}
		})
	}

	if !errors.Is(&RenderError{Err: cause}, cause) {
		t.Error("RenderError does not unwrap to its cause")
	}
}

func TestDecodeErr(t *testing.T) {
	t.Parallel()

	if decodeErr(nil) != nil {
		t.Error("decodeErr(nil) != nil")
	}

	if got := decodeErr(ErrNoAudio); got != ErrNoAudio {
		t.Errorf("decodeErr(ErrNoAudio) = %v, want it unchanged", got)
	}

	cause := errors.New("boom")
	got := decodeErr(cause)
	if !errors.Is(got, ErrDecode) || !errors.Is(got, cause) {
		t.Errorf("decodeErr(cause) = %v, want ErrDecode wrapping cause", got)
	}
}
