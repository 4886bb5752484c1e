// Package eventstest provides test doubles for the events package.
package eventstest

import (
	"context"
	"sync"

	"github.com/phrazzld/scaffold-api/internal/events"
)

// Recorder is an events.Sender that records every event it is asked to send.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	sent   []*events.Event
	err    error
	closed bool
}

// NewRecorder returns a Recorder that accepts every event.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewFailingRecorder returns a Recorder that records each attempt and then
// fails it with err, like an unreachable event system.
func NewFailingRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

// Send implements events.Sender.
func (r *Recorder) Send(_ context.Context, evt *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, evt)
	return r.err
}

// Close implements events.Sender.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Sent returns a copy of the recorded events in send order.
func (r *Recorder) Sent() []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.Event, len(r.sent))
	copy(out, r.sent)
	return out
}

// Count returns how many send attempts were made.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
