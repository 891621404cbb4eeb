// SPDX-License-Identifier: EPL-2.0

// Package mock provides test doubles for the capture interfaces.
//
// Device records calls and lets the test push chunks and errors through the
// callbacks handed to Start. Media exposes a manual end signal and Clock a
// manually advanced time source.
//
//	dev := &mock.Device{Type: "audio/webm"}
//	s := capture.NewSession(&mock.Provider{Device: dev}, &mock.Media{Length: time.Minute})
//	go s.Run(ctx)
//	<-dev.Started()
//	dev.Emit([]byte("chunk"))
package mock

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ik5/audxtract/capture"
)

// Provider is a mock capture.DeviceProvider.
type Provider struct {
	mu sync.Mutex

	// Device is returned by Acquire.
	Device capture.Device
	// Err, if non-nil, is returned by Acquire instead of Device.
	Err error
	// Block makes Acquire wait for its context.
	Block bool
	// Hold, if non-nil, makes Acquire ignore its context and wait until Hold
	// is closed.
	Hold chan struct{}

	calls int
}

func (p *Provider) Acquire(ctx context.Context) (capture.Device, error) {
	p.mu.Lock()
	p.calls++
	dev, err, block, hold := p.Device, p.Err, p.Block, p.Hold
	p.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	return dev, nil
}

// Calls returns the number of Acquire calls.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

var _ capture.DeviceProvider = (*Provider)(nil)

// Device is a mock capture.Device.
type Device struct {
	mu sync.Mutex

	// Type is returned by ContentType.
	Type string
	// StartErr, StopErr and ReleaseErr are returned by the matching method.
	StartErr   error
	StopErr    error
	ReleaseErr error
	// FlushChunks are delivered from Stop before it returns.
	FlushChunks [][]byte
	// BlockStop makes Stop wait for its context.
	BlockStop bool

	onChunk   func([]byte)
	onError   func(error)
	timeslice time.Duration
	started   chan struct{}
	stopped   chan struct{}

	starts   int
	stops    int
	releases int
}

func (d *Device) ContentType() string { return d.Type }

func (d *Device) Start(_ context.Context, timeslice time.Duration, onChunk func([]byte), onError func(error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.starts++
	if d.StartErr != nil {
		return d.StartErr
	}

	d.timeslice = timeslice
	d.onChunk, d.onError = onChunk, onError
	close(d.startedCh())

	return nil
}

func (d *Device) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stops++
	onChunk, flush, block, err := d.onChunk, d.FlushChunks, d.BlockStop, d.StopErr
	stopped := d.stoppedCh()
	d.mu.Unlock()

	defer close(stopped)

	if block {
		<-ctx.Done()
		return ctx.Err()
	}

	for _, c := range flush {
		onChunk(c)
	}

	return err
}

func (d *Device) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.releases++

	return d.ReleaseErr
}

// Emit delivers chunk as if the recorder produced it. It reports false when
// the device was not started.
func (d *Device) Emit(chunk []byte) bool {
	d.mu.Lock()
	onChunk := d.onChunk
	d.mu.Unlock()

	if onChunk == nil {
		return false
	}
	onChunk(chunk)

	return true
}

// Fail reports err through the error callback.
func (d *Device) Fail(err error) bool {
	d.mu.Lock()
	onError := d.onError
	d.mu.Unlock()

	if onError == nil {
		return false
	}
	onError(err)

	return true
}

// Started is closed once Start succeeded.
func (d *Device) Started() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.startedCh()
}

// Stopped is closed once Stop returned. Stop may only be called once.
func (d *Device) Stopped() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stoppedCh()
}

func (d *Device) startedCh() chan struct{} {
	if d.started == nil {
		d.started = make(chan struct{})
	}

	return d.started
}

func (d *Device) stoppedCh() chan struct{} {
	if d.stopped == nil {
		d.stopped = make(chan struct{})
	}

	return d.stopped
}

// Timeslice returns the cadence passed to Start.
func (d *Device) Timeslice() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timeslice
}

// Calls returns how many times Start, Stop and Release ran.
func (d *Device) Calls() (starts, stops, releases int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.starts, d.stops, d.releases
}

var _ capture.Device = (*Device)(nil)

// Media is a mock capture.Media.
type Media struct {
	mu sync.Mutex

	// Length is returned by Duration.
	Length time.Duration
	// DurationErr, if non-nil, is returned by Duration.
	DurationErr error
	// BlockDuration makes Duration wait for its context.
	BlockDuration bool
	// HoldDuration, if non-nil, makes Duration ignore its context and wait
	// until HoldDuration is closed.
	HoldDuration chan struct{}
	// PlayErr, if non-nil, is returned by Play.
	PlayErr error

	ended   chan struct{}
	endOnce sync.Once
	rate    float64
	plays   int
	closes  int
}

func (m *Media) Duration(ctx context.Context) (time.Duration, error) {
	m.mu.Lock()
	length, err, block, hold := m.Length, m.DurationErr, m.BlockDuration, m.HoldDuration
	m.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if block {
		<-ctx.Done()
		return 0, ctx.Err()
	}

	return length, err
}

func (m *Media) Play(_ context.Context, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plays++
	m.rate = rate

	return m.PlayErr
}

func (m *Media) Ended() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.endedCh()
}

// End signals the natural end of playback. Later calls are no-ops.
func (m *Media) End() {
	m.mu.Lock()
	ch := m.endedCh()
	m.mu.Unlock()

	m.endOnce.Do(func() { close(ch) })
}

func (m *Media) endedCh() chan struct{} {
	if m.ended == nil {
		m.ended = make(chan struct{})
	}

	return m.ended
}

func (m *Media) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closes++

	return nil
}

// Rate returns the playback rate passed to Play.
func (m *Media) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rate
}

// Calls returns how many times Play and Close ran.
func (m *Media) Calls() (plays, closes int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.plays, m.closes
}

var _ capture.Media = (*Media)(nil)

// Clock is a manually advanced capture.Clock.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
}

type timer struct {
	at      time.Time
	f       func()
	stopped bool
}

// NewClock returns a clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) AfterFunc(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &timer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)

	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()

		if t.stopped {
			return false
		}
		t.stopped = true

		return true
	}
}

// Advance moves the clock forward by d and runs every timer that became due,
// in deadline order, on the calling goroutine.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)

	var due []*timer
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.at.After(c.now):
			t.stopped = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *timer) int { return a.at.Compare(b.at) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of armed timers.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}

	return n
}

var _ capture.Clock = (*Clock)(nil)
