package redis

import (
	"time"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/internal/entity"
)

// eventModel is the JSON representation stored in Redis.
type eventModel struct {
	ID              string         `json:"id"`
	Kind            string         `json:"type"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Location        event.Location `json:"location"`
	Date            time.Time      `json:"date"`
	Duration        int            `json:"duration"`
	Participants    []string       `json:"participants"`
	MaxParticipants int            `json:"max_participants"`
	Visibility      string         `json:"visibility"`
	OwnerID         string         `json:"owner_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CachedAt        time.Time      `json:"cached_at"`
}

func toEventModel(e *event.Event, cachedAt time.Time) *eventModel {
	return &eventModel{
		ID:              e.ID.String(),
		Kind:            string(e.Kind),
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		Date:            e.Date,
		Duration:        e.Duration,
		Participants:    e.Participants,
		MaxParticipants: e.MaxParticipants,
		Visibility:      string(e.Visibility),
		OwnerID:         e.OwnerID,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		CachedAt:        cachedAt,
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	evtID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	return &event.Event{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:              evtID,
		Kind:            event.Kind(m.Kind),
		Title:           m.Title,
		Description:     m.Description,
		Location:        m.Location,
		Date:            m.Date,
		Duration:        m.Duration,
		Participants:    m.Participants,
		MaxParticipants: m.MaxParticipants,
		Visibility:      event.Visibility(m.Visibility),
		OwnerID:         m.OwnerID,
	}, nil
}
