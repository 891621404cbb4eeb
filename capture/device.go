// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"context"
	"time"
)

// Device is a live recorder that delivers encoded audio in time-sliced
// chunks. A Device is owned by a single session.
type Device interface {
	// ContentType is the MIME type of the recorded blob, e.g. audio/webm.
	ContentType() string

	// Start begins recording. onChunk receives every chunk in order, roughly
	// every timeslice; onError reports failures after Start returned. Both
	// may be called from any goroutine and must not be called concurrently
	// with each other.
	Start(ctx context.Context, timeslice time.Duration, onChunk func([]byte), onError func(error)) error

	// Stop flushes the recorder. Every pending chunk is delivered through
	// onChunk before Stop returns.
	Stop(ctx context.Context) error

	// Release frees the device handle.
	Release() error
}

// DeviceProvider grants access to a capture device. Acquire returns an error
// matching ErrPermissionDenied when access is refused.
type DeviceProvider interface {
	Acquire(ctx context.Context) (Device, error)
}

// Media is the source being played while it is captured.
type Media interface {
	// Duration blocks until the media length is known.
	Duration(ctx context.Context) (time.Duration, error)

	// Play starts playback at rate times normal speed.
	Play(ctx context.Context, rate float64) error

	// Ended is closed when playback reaches its natural end.
	Ended() <-chan struct{}

	// Close releases the media handle.
	Close() error
}

// Clock is the time source of a session.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine after d. The returned stop
	// reports whether it prevented the call.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
