package api

import (
	"time"

	"github.com/xraph/huddle/event"
)

// ---------------------------------------------------------------------------
// Read requests
// ---------------------------------------------------------------------------

// ListEventsForgeRequest binds query parameters for GET /events.
type ListEventsForgeRequest struct {
	Intent string `description:"overview, history, search or map (default overview)" query:"intent"`
}

// GetEventForgeRequest binds the path for GET /events/:eventId.
type GetEventForgeRequest struct {
	EventID string `description:"Event identifier" path:"eventId"`
}

// GetEventsForgeRequest binds the body for POST /events/batch.
type GetEventsForgeRequest struct {
	IDs []string `description:"Event identifiers, any number" json:"ids"`
}

// CommonEventsForgeRequest binds query parameters for GET /events/common.
type CommonEventsForgeRequest struct {
	Users []string `description:"User IDs that must all participate" query:"user"`
}

// ---------------------------------------------------------------------------
// Write requests
// ---------------------------------------------------------------------------

// CreateEventForgeRequest binds the body for POST /events and PUT /events/:eventId.
type CreateEventForgeRequest struct {
	Type            string          `description:"SPORTS, ACTIVITY or SOCIAL"           json:"type"`
	Title           string          `description:"Event title"                          json:"title"`
	Description     string          `description:"Free-form description"                json:"description,omitempty"`
	Location        *event.Location `description:"Where the event takes place"          json:"location,omitempty"`
	Date            time.Time       `description:"Start time (RFC3339)"                 json:"date"`
	Duration        int             `description:"Length in minutes"                    json:"duration"`
	Participants    []string        `description:"Participant user IDs"                 json:"participants,omitempty"`
	MaxParticipants int             `description:"Participant cap, 0 for none"          json:"max_participants,omitempty"`
	Visibility      string          `description:"PUBLIC or PRIVATE"                    json:"visibility"`
	OwnerID         string          `description:"Owner; defaults to the calling user"  json:"owner_id,omitempty"`
}

// Event builds the event described by the request. The ID is left for the
// repository to assign.
func (r *CreateEventForgeRequest) Event() *event.Event {
	e := &event.Event{
		Kind:            event.Kind(r.Type),
		Title:           r.Title,
		Description:     r.Description,
		Date:            r.Date,
		Duration:        r.Duration,
		Participants:    r.Participants,
		MaxParticipants: r.MaxParticipants,
		Visibility:      event.Visibility(r.Visibility),
		OwnerID:         r.OwnerID,
	}
	if r.Location != nil {
		e.Location = *r.Location
	}
	return e
}

// UpdateEventForgeRequest binds path + body for PUT /events/:eventId.
type UpdateEventForgeRequest struct {
	EventID string `description:"Event identifier" path:"eventId"`
	CreateEventForgeRequest
}

// DeleteEventForgeRequest binds the path for DELETE /events/:eventId.
type DeleteEventForgeRequest struct {
	EventID string `description:"Event identifier" path:"eventId"`
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// StatusForgeRequest is empty; GET /status has no parameters.
type StatusForgeRequest struct{}

// StatusForgeResponse is the response for GET /status.
type StatusForgeResponse struct {
	Online       bool `json:"online"`
	CachedEvents int  `json:"cached_events"`
}
