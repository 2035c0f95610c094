package postgres

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/internal/entity"
)

type eventModel struct {
	grove.BaseModel `grove:"table:huddle_events"`

	ID              string     `grove:"id,pk"`
	Kind            string     `grove:"kind"`
	Title           string     `grove:"title"`
	Description     string     `grove:"description"`
	LocationLat     float64    `grove:"location_lat"`
	LocationLng     float64    `grove:"location_lng"`
	LocationName    string     `grove:"location_name"`
	Date            *time.Time `grove:"date"`
	Duration        int        `grove:"duration"`
	Participants    []string   `grove:"participants,type:jsonb"`
	MaxParticipants int        `grove:"max_participants"`
	Visibility      string     `grove:"visibility"`
	OwnerID         string     `grove:"owner_id"`
	CreatedAt       time.Time  `grove:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"`
}

func toEventModel(e *event.Event) *eventModel {
	var date *time.Time
	if !e.Date.IsZero() {
		d := e.Date.UTC()
		date = &d
	}
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return &eventModel{
		ID:              e.ID.String(),
		Kind:            string(e.Kind),
		Title:           e.Title,
		Description:     e.Description,
		LocationLat:     e.Location.Lat,
		LocationLng:     e.Location.Lng,
		LocationName:    e.Location.Name,
		Date:            date,
		Duration:        e.Duration,
		Participants:    participants,
		MaxParticipants: e.MaxParticipants,
		Visibility:      string(e.Visibility),
		OwnerID:         e.OwnerID,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	evtID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse event ID %q: %w", m.ID, err)
	}

	e := &event.Event{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          evtID,
		Kind:        event.Kind(m.Kind),
		Title:       m.Title,
		Description: m.Description,
		Location: event.Location{
			Lat:  m.LocationLat,
			Lng:  m.LocationLng,
			Name: m.LocationName,
		},
		Duration:        m.Duration,
		Participants:    m.Participants,
		MaxParticipants: m.MaxParticipants,
		Visibility:      event.Visibility(m.Visibility),
		OwnerID:         m.OwnerID,
	}
	if m.Date != nil {
		e.Date = *m.Date
	}
	return e, nil
}

// fromEventModels converts rows, dropping any that fail to decode or lack
// the fields readers depend on.
func fromEventModels(models []eventModel) []*event.Event {
	result := make([]*event.Event, 0, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil || !e.Readable() {
			continue
		}
		result = append(result, e)
	}
	return result
}
