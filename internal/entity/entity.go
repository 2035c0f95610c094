// Package entity defines the timestamps embedded by Huddle domain objects.
package entity

import "time"

// Entity carries creation and last-write timestamps.
type Entity struct {
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Touch sets UpdatedAt to now, and CreatedAt too when it was never set.
func (e *Entity) Touch(now time.Time) {
	now = now.UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}
