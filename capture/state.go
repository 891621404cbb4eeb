// SPDX-License-Identifier: EPL-2.0

package capture

// State is a capture session lifecycle state. Transitions only move forward:
//
//	Idle -> Preparing -> Recording -> Stopping -> Done
//
// and any of Preparing, Recording or Stopping may jump to Failed.
type State int

const (
	Idle State = iota
	Preparing
	Recording
	Stopping
	Done
	Failed
)

var stateNames = [...]string{"idle", "preparing", "recording", "stopping", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Terminal reports whether s is Done or Failed.
func (s State) Terminal() bool { return s == Done || s == Failed }

// canMove reports whether the lifecycle allows s -> next.
func (s State) canMove(next State) bool {
	switch next {
	case Failed:
		return s == Preparing || s == Recording || s == Stopping
	case Preparing, Recording, Stopping, Done:
		return next == s+1
	default:
		return false
	}
}

// Reason is the failure code carried by a session that ended in Failed.
type Reason int

const (
	ReasonNone Reason = iota
	// PermissionDenied: the device provider refused access.
	PermissionDenied
	// MetadataTimeout: the media duration was not resolved in time.
	MetadataTimeout
	// DeviceError: the device could not be acquired, failed mid-capture or
	// failed to flush.
	DeviceError
	// PlaybackError: the source media could not be played.
	PlaybackError
	// Canceled: the caller canceled before recording began.
	Canceled
)

var reasonNames = [...]string{
	"none", "permission_denied", "metadata_timeout", "device_error", "playback_error", "canceled",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}

	return reasonNames[r]
}

// StopCause records which trigger moved a session from Recording to
// Stopping.
type StopCause int

const (
	// StopEnded: the media signaled the natural end of playback.
	StopEnded StopCause = iota + 1
	// StopTimeout: the hard timeout of target plus grace elapsed.
	StopTimeout
	// StopRequested: Stop was called or the run context was canceled.
	StopRequested
)

func (c StopCause) String() string {
	switch c {
	case StopEnded:
		return "ended"
	case StopTimeout:
		return "timeout"
	case StopRequested:
		return "requested"
	default:
		return "none"
	}
}
