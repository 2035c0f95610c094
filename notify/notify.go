// Package notify schedules local reminders for upcoming events.
//
// A Scheduler is a dumb executor: the repository decides when to schedule and
// when to cancel, and a Scheduler only carries the request out.
package notify

import (
	"context"
	"time"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

// DefaultLead is how long before the start a reminder fires.
const DefaultLead = 30 * time.Minute

// Scheduler schedules and cancels the reminder of an event. Scheduling an
// event that already has a reminder replaces it. Cancelling an event
// without one is not an error.
type Scheduler interface {
	Schedule(ctx context.Context, evt *event.Event) error
	Cancel(ctx context.Context, evtID id.ID) error
}

// Reminder is a single time-triggered notification.
type Reminder struct {
	ID       id.ID     `json:"id"`
	EventID  id.ID     `json:"event_id"`
	OwnerID  string    `json:"owner_id"`
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	FireAt   time.Time `json:"fire_at"`
}

// NewReminder builds the reminder for evt, firing lead before the start.
func NewReminder(evt *event.Event, lead time.Duration) Reminder {
	return Reminder{
		ID:       id.NewReminderID(),
		EventID:  evt.ID,
		OwnerID:  evt.OwnerID,
		Title:    evt.Title,
		Location: evt.Location.Name,
		StartsAt: evt.Date,
		FireAt:   evt.Date.Add(-lead),
	}
}

// Sink receives reminders when they fire.
type Sink interface {
	Deliver(ctx context.Context, r Reminder)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r Reminder)

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, r Reminder) { f(ctx, r) }
