package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/internal/entity"
)

type eventModel struct {
	grove.BaseModel `grove:"table:huddle_events"`

	ID              string    `grove:"id,pk"`
	Kind            string    `grove:"kind"`
	Title           string    `grove:"title"`
	Description     string    `grove:"description"`
	LocationLat     float64   `grove:"location_lat"`
	LocationLng     float64   `grove:"location_lng"`
	LocationName    string    `grove:"location_name"`
	Date            time.Time `grove:"date"`
	Duration        int       `grove:"duration"`
	Participants    string    `grove:"participants"` // JSON array
	MaxParticipants int       `grove:"max_participants"`
	Visibility      string    `grove:"visibility"`
	OwnerID         string    `grove:"owner_id"`
	CreatedAt       time.Time `grove:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"`
	CachedAt        time.Time `grove:"cached_at"`
}

func toEventModel(e *event.Event, cachedAt time.Time) *eventModel {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	raw, _ := json.Marshal(participants) //nolint:errcheck // []string always marshals

	return &eventModel{
		ID:              e.ID.String(),
		Kind:            string(e.Kind),
		Title:           e.Title,
		Description:     e.Description,
		LocationLat:     e.Location.Lat,
		LocationLng:     e.Location.Lng,
		LocationName:    e.Location.Name,
		Date:            e.Date.UTC(),
		Duration:        e.Duration,
		Participants:    string(raw),
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
		return nil, fmt.Errorf("parse event ID %q: %w", m.ID, err)
	}

	var participants []string
	if m.Participants != "" {
		if err := json.Unmarshal([]byte(m.Participants), &participants); err != nil {
			return nil, fmt.Errorf("decode participants of %s: %w", m.ID, err)
		}
	}

	return &event.Event{
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
		Date:            m.Date,
		Duration:        m.Duration,
		Participants:    participants,
		MaxParticipants: m.MaxParticipants,
		Visibility:      event.Visibility(m.Visibility),
		OwnerID:         m.OwnerID,
	}, nil
}
