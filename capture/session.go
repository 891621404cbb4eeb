// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/audxtract/internal/observe"
)

// Result is the output of a session that reached Done.
type Result struct {
	// SessionID is the ID of the session that produced the result.
	SessionID string
	// Data is the concatenation of every chunk in arrival order.
	Data []byte
	// ContentType is the device's declared MIME type of Data.
	ContentType string
	// Extension is the suggested file extension for Data, without dot.
	Extension string
	// Chunks is the number of chunks in Data.
	Chunks int
	// Cause is the trigger that stopped recording.
	Cause StopCause
	// Target is the recorded source duration.
	Target time.Duration
	// PlaybackRate is the speed the source was played at.
	PlaybackRate float64
	// Elapsed is the wall-clock time from the start of recording to the end
	// of the flush.
	Elapsed time.Duration
}

// Session records one media source from a capture device. A Session runs
// once; a new capture needs a new Session.
type Session struct {
	id       string
	provider DeviceProvider
	media    Media
	cfg      Config
	clock    Clock
	log      *slog.Logger
	metrics  *observe.Metrics
	tracer   trace.Tracer
	hook     func(id string, from, to State)

	queue *eventQueue
	quit  chan struct{}

	mu        sync.Mutex
	state     State
	err       error
	used      bool
	target    time.Duration
	rate      float64
	startedAt time.Time
	stoppedAt time.Time

	cfgErr error

	// Owned by the goroutine running Run.
	device      Device
	chunks      [][]byte
	cause       StopCause
	disarm      func() bool
	flushCancel context.CancelFunc
	releaseOnce sync.Once
}

// NewSession prepares a session capturing media through a device from
// provider. Nothing is acquired until Run.
func NewSession(provider DeviceProvider, media Media, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New().String(),
		provider: provider,
		media:    media,
		cfg:      DefaultConfig(),
		clock:    systemClock{},
		log:      slog.Default(),
		queue:    newEventQueue(),
		quit:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.tracer == nil {
		s.tracer = observe.Tracer(nil)
	}
	s.log = s.log.With(slog.String("session_id", s.id))

	return s
}

// ID returns the session's UUID.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Err returns the *Error of a Failed session, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Progress estimates the recorded share of the target in [0, 1].
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == Done:
		return 1
	case s.startedAt.IsZero() || s.target <= 0:
		return 0
	}

	end := s.stoppedAt
	if end.IsZero() {
		end = s.clock.Now()
	}

	played := float64(end.Sub(s.startedAt)) * s.rate

	return max(0, min(played/float64(s.target), 1))
}

// Stop asks a recording session to stop early. Recorded chunks are still
// flushed and returned. A Stop issued before recording begins takes effect
// as soon as it does; after the session ended Stop is a no-op.
func (s *Session) Stop() {
	s.queue.post(event{kind: evStop})
}

// Run drives the session to Done or Failed and blocks until then.
//
// Canceling ctx while recording behaves like Stop: the device is flushed on
// a context detached from ctx and the partial result is returned. Canceling
// before recording fails the session with reason Canceled. Failures are
// returned as *Error. A session built with an invalid Config returns an
// error wrapping ErrInvalidConfig without acquiring a device and stays Idle.
func (s *Session) Run(ctx context.Context) (res *Result, err error) {
	if !s.claim() {
		return nil, ErrSessionUsed
	}
	defer s.release()

	if s.cfgErr != nil {
		return nil, s.cfgErr
	}

	ctx, span := s.tracer.Start(ctx, "capture.Session.Run",
		trace.WithAttributes(attribute.String("session.id", s.id)))
	defer func() { observe.EndSpan(span, err) }()
	s.log = observe.Logger(ctx, s.log)

	s.metrics.ActiveCaptures.Add(ctx, 1)
	defer s.metrics.ActiveCaptures.Add(context.WithoutCancel(ctx), -1)

	s.transition(Preparing)
	if err := s.prepare(ctx); err != nil {
		return nil, s.fail(ctx, err)
	}

	return s.loop(ctx)
}

func (s *Session) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used {
		return false
	}
	s.used = true

	return true
}

// prepare acquires the device, resolves the media duration and starts both
// recording and playback. Chunks delivered before the Recording transition
// stay queued and are kept.
func (s *Session) prepare(ctx context.Context) error {
	dev, err := s.acquire(ctx)
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return &Error{Reason: PermissionDenied, Err: err}
	case err != nil && ctx.Err() != nil:
		return &Error{Reason: Canceled, Err: err}
	case err != nil:
		return &Error{Reason: DeviceError, Err: fmt.Errorf("acquire: %w", err)}
	case dev == nil:
		return &Error{Reason: DeviceError, Err: errors.New("acquire: no device")}
	}
	s.device = dev

	length, err := s.duration(ctx)

	switch {
	case err != nil && ctx.Err() != nil:
		return &Error{Reason: Canceled, Err: ctx.Err()}
	case err != nil:
		return &Error{Reason: MetadataTimeout, Err: fmt.Errorf("%w: %w", ErrMetadataTimeout, err)}
	case length <= 0:
		return &Error{Reason: MetadataTimeout, Err: fmt.Errorf("%w: duration %v", ErrMetadataTimeout, length)}
	}

	target := TargetDuration(length, s.cfg)
	rate := PlaybackRate(target, s.cfg)

	if err := dev.Start(ctx, s.cfg.Timeslice, s.onChunk, s.onDeviceError); err != nil {
		return &Error{Reason: DeviceError, Err: fmt.Errorf("start: %w", err)}
	}
	if err := s.media.Play(ctx, rate); err != nil {
		return &Error{Reason: PlaybackError, Err: err}
	}

	s.mu.Lock()
	s.target, s.rate, s.startedAt = target, rate, s.clock.Now()
	s.mu.Unlock()

	// The natural end and the hard timeout race; the first one queued wins.
	s.disarm = s.clock.AfterFunc(HardTimeout(target, s.cfg), func() {
		s.queue.post(event{kind: evTimeout})
	})
	go s.watchEnded(s.media.Ended())

	s.transition(Recording)

	s.log.Info("capture recording",
		slog.Duration("source", length),
		slog.Duration("target", target),
		slog.Float64("playback_rate", rate),
		slog.String("content_type", dev.ContentType()),
	)

	return nil
}

// acquire returns as soon as ctx ends even if the provider ignores it. A
// device granted after that is released.
func (s *Session) acquire(ctx context.Context) (Device, error) {
	type grant struct {
		dev Device
		err error
	}
	done := make(chan grant, 1)

	go func() {
		dev, err := s.provider.Acquire(ctx)
		done <- grant{dev, err}
	}()

	select {
	case g := <-done:
		return g.dev, g.err
	case <-ctx.Done():
		go func() {
			if g := <-done; g.dev != nil {
				if err := g.dev.Release(); err != nil {
					s.log.Warn("release late capture device", slog.Any("error", err))
				}
			}
		}()

		return nil, ctx.Err()
	}
}

// duration resolves the media length within MetadataTimeout even if the
// media ignores its context.
func (s *Session) duration(ctx context.Context) (time.Duration, error) {
	mctx, cancel := context.WithTimeout(ctx, s.cfg.MetadataTimeout)
	defer cancel()

	type meta struct {
		length time.Duration
		err    error
	}
	done := make(chan meta, 1)

	go func() {
		length, err := s.media.Duration(mctx)
		done <- meta{length, err}
	}()

	select {
	case m := <-done:
		return m.length, m.err
	case <-mctx.Done():
		return 0, mctx.Err()
	}
}

func (s *Session) onChunk(b []byte) {
	s.queue.post(event{kind: evChunk, data: bytes.Clone(b)})
}

func (s *Session) onDeviceError(err error) {
	s.queue.post(event{kind: evDeviceError, err: err})
}

func (s *Session) watchEnded(ended <-chan struct{}) {
	select {
	case <-ended:
		s.queue.post(event{kind: evEnded})
	case <-s.quit:
	}
}

// loop consumes the event queue until the session is terminal.
func (s *Session) loop(ctx context.Context) (*Result, error) {
	canceled := ctx.Done()

	for {
		select {
		case <-s.queue.ready:
			for _, ev := range s.queue.drain() {
				if res, done, err := s.handle(ctx, ev); done {
					return res, err
				}
			}
		case <-canceled:
			canceled = nil
			s.beginStop(ctx, StopRequested)
		}
	}
}

// handle applies one event. done reports that the session became terminal.
func (s *Session) handle(ctx context.Context, ev event) (*Result, bool, error) {
	switch ev.kind {
	case evChunk:
		s.chunks = append(s.chunks, ev.data)
		s.metrics.CaptureChunks.Add(ctx, 1)
	case evDeviceError:
		return nil, true, s.fail(ctx, &Error{Reason: DeviceError, Err: ev.err})
	case evEnded:
		s.beginStop(ctx, StopEnded)
	case evTimeout:
		s.beginStop(ctx, StopTimeout)
	case evStop:
		s.beginStop(ctx, StopRequested)
	case evFlushed:
		if ev.err != nil {
			return nil, true, s.fail(ctx, &Error{Reason: DeviceError, Err: fmt.Errorf("flush: %w", ev.err)})
		}
		return s.finish(ctx), true, nil
	}

	return nil, false, nil
}

// beginStop moves Recording to Stopping and flushes the device. Triggers
// arriving in any other state are ignored.
func (s *Session) beginStop(ctx context.Context, cause StopCause) {
	if state := s.State(); state != Recording {
		s.log.Debug("stop trigger ignored",
			slog.String("cause", cause.String()), slog.String("state", state.String()))
		return
	}

	s.cause = cause
	s.mu.Lock()
	s.stoppedAt = s.clock.Now()
	s.mu.Unlock()
	s.transition(Stopping)

	if s.disarm != nil {
		s.disarm()
	}

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FlushTimeout)
	s.flushCancel = cancel

	// Exactly one evFlushed is posted: by Stop returning or by the deadline.
	expire := context.AfterFunc(fctx, func() {
		s.queue.post(event{kind: evFlushed, err: fctx.Err()})
	})

	dev := s.device
	go func() {
		err := dev.Stop(fctx)
		if expire() {
			s.queue.post(event{kind: evFlushed, err: err})
		}
		cancel()
	}()

	s.log.Debug("capture stopping", slog.String("cause", cause.String()))
}

func (s *Session) finish(ctx context.Context) *Result {
	data := bytes.Join(s.chunks, nil)
	contentType := s.device.ContentType()

	s.release()

	s.mu.Lock()
	res := &Result{
		SessionID:    s.id,
		Data:         data,
		ContentType:  contentType,
		Extension:    ExtensionFor(contentType),
		Chunks:       len(s.chunks),
		Cause:        s.cause,
		Target:       s.target,
		PlaybackRate: s.rate,
		Elapsed:      s.clock.Now().Sub(s.startedAt),
	}
	s.mu.Unlock()

	s.transition(Done)
	s.metrics.RecordCaptureSession(ctx, Done.String(), s.cause.String())
	s.log.Info("capture done",
		slog.String("cause", s.cause.String()),
		slog.Int("chunks", res.Chunks),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", res.Elapsed),
	)

	return res
}

func (s *Session) fail(ctx context.Context, err error) error {
	var ce *Error
	if !errors.As(err, &ce) {
		ce = &Error{Reason: DeviceError, Err: err}
	}

	s.release()

	s.mu.Lock()
	s.err = ce
	if s.stoppedAt.IsZero() && !s.startedAt.IsZero() {
		s.stoppedAt = s.clock.Now()
	}
	s.mu.Unlock()

	s.transition(Failed)
	s.metrics.RecordCaptureSession(ctx, Failed.String(), ce.Reason.String())
	s.log.Warn("capture failed",
		slog.String("reason", ce.Reason.String()),
		slog.Any("error", ce.Err),
	)

	return ce
}

// transition moves the session to next when the lifecycle allows it.
func (s *Session) transition(next State) bool {
	s.mu.Lock()
	prev := s.state
	if !prev.canMove(next) {
		s.mu.Unlock()
		s.log.Error("invalid capture transition",
			slog.String("from", prev.String()), slog.String("to", next.String()))
		return false
	}
	s.state = next
	s.mu.Unlock()

	s.log.Debug("capture state", slog.String("from", prev.String()), slog.String("to", next.String()))
	if s.hook != nil {
		s.hook(s.id, prev, next)
	}

	return true
}

// release frees every acquired resource exactly once.
func (s *Session) release() {
	s.releaseOnce.Do(func() {
		close(s.quit)
		s.queue.close()

		if s.disarm != nil {
			s.disarm()
		}
		if s.flushCancel != nil {
			s.flushCancel()
		}

		if s.device != nil {
			if err := s.device.Release(); err != nil {
				s.log.Warn("release capture device", slog.Any("error", err))
			}
		}
		if err := s.media.Close(); err != nil {
			s.log.Warn("close media", slog.Any("error", err))
		}
	})
}
