package event

import "time"

// Lifecycle is the time-derived state of an event. It is never stored.
type Lifecycle int

const (
	// Upcoming: now is before the start.
	Upcoming Lifecycle = iota
	// Active: the event has started and not yet ended.
	Active
	// Expired: now is at or past the end.
	Expired
)

func (l Lifecycle) String() string {
	switch l {
	case Upcoming:
		return "upcoming"
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// End returns the instant the event finishes.
func (e *Event) End() time.Time {
	return e.Date.Add(time.Duration(e.Duration) * time.Minute)
}

// State computes the lifecycle at now. Exactly one state holds for any now;
// a zero duration event goes straight from Upcoming to Expired.
func (e *Event) State(now time.Time) Lifecycle {
	if now.Before(e.Date) {
		return Upcoming
	}
	if now.Before(e.End()) {
		return Active
	}
	return Expired
}
