package notify

import (
	"context"
	"sync"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

var _ Scheduler = (*Recorder)(nil)

// Op names a scheduler call.
type Op string

const (
	OpSchedule Op = "schedule"
	OpCancel   Op = "cancel"
)

// Call is one recorded scheduler call.
type Call struct {
	Op      Op
	EventID id.ID
}

// Recorder is a Scheduler that only records what it was asked to do. An
// optional Err is returned from every call after recording it.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

// Schedule implements Scheduler.
func (r *Recorder) Schedule(_ context.Context, evt *event.Event) error {
	return r.record(OpSchedule, evt.ID)
}

// Cancel implements Scheduler.
func (r *Recorder) Cancel(_ context.Context, evtID id.ID) error {
	return r.record(OpCancel, evtID)
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times op was called for evtID.
func (r *Recorder) Count(op Op, evtID id.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op && c.EventID == evtID {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *Recorder) record(op Op, evtID id.ID) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, EventID: evtID})
	r.mu.Unlock()
	return r.Err
}
