// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned by a DeviceProvider when access to the
	// capture device is refused.
	ErrPermissionDenied = errors.New("capture device permission denied")

	// ErrMetadataTimeout reports that the media duration was not available
	// within Config.MetadataTimeout.
	ErrMetadataTimeout = errors.New("media duration unavailable")

	// ErrSessionUsed is returned by Run on a session that already ran.
	ErrSessionUsed = errors.New("capture session already used")

	// ErrInvalidConfig is wrapped by Config.Validate failures.
	ErrInvalidConfig = errors.New("invalid capture config")
)

// Error is the failure of a session, classified by Reason.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "capture failed: " + e.Reason.String()
	}

	return fmt.Sprintf("capture failed: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ReasonOf returns the Reason of err when it carries an *Error.
func ReasonOf(err error) Reason {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Reason
	}

	return ReasonNone
}
