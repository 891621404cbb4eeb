// SPDX-License-Identifier: EPL-2.0

// Package capture records a playing media source through a live capture
// device. It is the fallback for sources the offline decoders cannot read.
//
// A Session drives one capture through an explicit state machine:
//
//	Idle -> Preparing -> Recording -> Stopping -> Done
//	          |             |            |
//	          +-------------+------------+--> Failed(reason)
//
// Preparing acquires the Device and resolves the Media duration. Recording
// plays the source, possibly sped up (see PlaybackRate), while the device
// delivers chunks on a fixed cadence. Recording stops on whichever comes
// first: the natural end of the media, the hard timeout of target plus
// grace, or an explicit Stop. Stopping flushes the device, then the chunks
// are joined into the Result.
//
// Device callbacks, timers and stop requests are serialized through a single
// event queue, so chunks keep their arrival order and the first stop trigger
// wins. Device and media handles are released exactly once on every path to
// Done or Failed.
//
//	s := capture.NewSession(provider, media, capture.WithLogger(log))
//	res, err := s.Run(ctx)
//	switch capture.ReasonOf(err) {
//	case capture.PermissionDenied:
//	    // ask the user for access
//	}
//	name := "recording." + res.Extension
package capture
