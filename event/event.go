package event

import (
	"slices"
	"time"

	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/internal/entity"
)

// Kind classifies an event.
type Kind string

const (
	KindSports   Kind = "SPORTS"
	KindActivity Kind = "ACTIVITY"
	KindSocial   Kind = "SOCIAL"
)

// Visibility controls who can discover an event through search.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Location is where an event takes place. The zero value means "no location".
type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0 && l.Name == ""
}

// Event is a scheduled gathering that users can join.
type Event struct {
	entity.Entity

	// ID is assigned by the remote source before the first persist.
	ID id.ID `json:"id"`

	Kind        Kind     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    Location `json:"location"`

	// Date is the start time.
	Date time.Time `json:"date"`

	// Duration is the length of the event in minutes. Stored values of 0 are
	// tolerated, but writes require at least 1.
	Duration int `json:"duration"`

	// Participants is a set of user IDs kept in join order. It always
	// contains OwnerID once the event has been written.
	Participants    []string   `json:"participants"`
	MaxParticipants int        `json:"max_participants"`
	Visibility      Visibility `json:"visibility"`

	// OwnerID is immutable after creation.
	OwnerID string `json:"owner_id"`
}

// HasLocation reports whether the event carries a location.
func (e *Event) HasLocation() bool { return !e.Location.IsZero() }

// HasParticipant reports whether uid is in the participant set.
func (e *Event) HasParticipant(uid string) bool {
	return uid != "" && slices.Contains(e.Participants, uid)
}

// HasAllParticipants reports whether every uid is a participant.
func (e *Event) HasAllParticipants(uids []string) bool {
	for _, uid := range uids {
		if !e.HasParticipant(uid) {
			return false
		}
	}
	return true
}

// EnsureOwner adds OwnerID to the participants and drops duplicate entries.
func (e *Event) EnsureOwner() {
	seen := make(map[string]struct{}, len(e.Participants)+1)
	out := e.Participants[:0:0]
	for _, p := range e.Participants {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if _, ok := seen[e.OwnerID]; !ok && e.OwnerID != "" {
		out = append(out, e.OwnerID)
	}
	e.Participants = out
}

// Readable reports whether the record has the fields every reader depends on.
// Records missing any of them are dropped from bulk reads.
func (e *Event) Readable() bool {
	return e.Title != "" && !e.Date.IsZero() && e.OwnerID != ""
}

// Clone returns a deep copy, so stores never share the participant slice
// with callers.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Participants = slices.Clone(e.Participants)
	return &c
}

// CloneAll deep-copies a slice of events.
func CloneAll(events []*Event) []*Event {
	out := make([]*Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}
