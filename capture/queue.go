// SPDX-License-Identifier: EPL-2.0

package capture

import "sync"

type eventKind int

const (
	evChunk eventKind = iota
	evDeviceError
	evEnded
	evTimeout
	evStop
	evFlushed
)

type event struct {
	kind eventKind
	data []byte
	err  error
}

// eventQueue is an unbounded FIFO. Producers never block; the single
// consumer waits on ready and drains every queued event at once.
type eventQueue struct {
	mu     sync.Mutex
	items  []event
	closed bool
	ready  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

// post appends e. It reports false once the queue is closed.
func (q *eventQueue) post(e event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}

	return true
}

func (q *eventQueue) drain() []event {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil

	return items
}

// close drops pending events and rejects new ones.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.items = nil
}
