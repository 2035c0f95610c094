package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

var _ Scheduler = (*Timer)(nil)

// Timer fires reminders in-process using time.AfterFunc.
type Timer struct {
	mu      sync.Mutex
	pending map[id.ID]*pendingReminder
	lead    time.Duration
	sink    Sink
	logger  *slog.Logger
	now     func() time.Time
}

type pendingReminder struct {
	reminder Reminder
	timer    *time.Timer
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithLead sets how long before the start the reminder fires.
func WithLead(d time.Duration) TimerOption {
	return func(t *Timer) { t.lead = d }
}

// WithTimerLogger sets the logger.
func WithTimerLogger(l *slog.Logger) TimerOption {
	return func(t *Timer) { t.logger = l }
}

// WithTimerClock overrides the clock used to compute delays.
func WithTimerClock(now func() time.Time) TimerOption {
	return func(t *Timer) { t.now = now }
}

// NewTimer returns a Timer delivering to sink.
func NewTimer(sink Sink, opts ...TimerOption) *Timer {
	t := &Timer{
		pending: make(map[id.ID]*pendingReminder),
		lead:    DefaultLead,
		sink:    sink,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schedule arms a reminder for evt, replacing any existing one. A reminder
// whose fire time has already passed fires right away.
func (t *Timer) Schedule(_ context.Context, evt *event.Event) error {
	r := NewReminder(evt, t.lead)
	delay := r.FireAt.Sub(t.now())
	if delay < 0 {
		delay = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.pending[evt.ID]; ok {
		old.timer.Stop()
	}
	p := &pendingReminder{reminder: r}
	p.timer = time.AfterFunc(delay, func() { t.fire(evt.ID, p) })
	t.pending[evt.ID] = p

	t.logger.Debug("reminder scheduled", "event_id", evt.ID, "fire_at", r.FireAt)
	return nil
}

// Cancel disarms the reminder of evtID, if any.
func (t *Timer) Cancel(_ context.Context, evtID id.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.pending[evtID]; ok {
		p.timer.Stop()
		delete(t.pending, evtID)
		t.logger.Debug("reminder cancelled", "event_id", evtID)
	}
	return nil
}

// Pending returns the number of armed reminders.
func (t *Timer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Stop disarms every reminder.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for evtID, p := range t.pending {
		p.timer.Stop()
		delete(t.pending, evtID)
	}
}

func (t *Timer) fire(evtID id.ID, p *pendingReminder) {
	t.mu.Lock()
	// A reschedule may have replaced p after its timer already started.
	if t.pending[evtID] != p {
		t.mu.Unlock()
		return
	}
	delete(t.pending, evtID)
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.Deliver(context.Background(), p.reminder)
	}
}
