package mongo

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/internal/entity"
)

type locationModel struct {
	Lat  float64 `bson:"lat"`
	Lng  float64 `bson:"lng"`
	Name string  `bson:"name,omitempty"`
}

type eventModel struct {
	grove.BaseModel `grove:"table:huddle_events"`

	ID              string         `grove:"id,pk"            bson:"_id"`
	Kind            string         `grove:"kind"             bson:"type"`
	Title           string         `grove:"title"            bson:"title"`
	Description     string         `grove:"description"      bson:"description,omitempty"`
	Location        *locationModel `grove:"location"         bson:"location,omitempty"`
	Date            time.Time      `grove:"date"             bson:"date"`
	Duration        int            `grove:"duration"         bson:"duration"`
	Participants    []string       `grove:"participants"     bson:"participants"`
	MaxParticipants int            `grove:"max_participants" bson:"max_participants"`
	Visibility      string         `grove:"visibility"       bson:"visibility"`
	OwnerID         string         `grove:"owner_id"         bson:"owner_id"`
	CreatedAt       time.Time      `grove:"created_at"       bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"       bson:"updated_at"`
}

func toEventModel(e *event.Event) *eventModel {
	var loc *locationModel
	if e.HasLocation() {
		loc = &locationModel{Lat: e.Location.Lat, Lng: e.Location.Lng, Name: e.Location.Name}
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
		Location:        loc,
		Date:            e.Date.UTC(),
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
		ID:              evtID,
		Kind:            event.Kind(m.Kind),
		Title:           m.Title,
		Description:     m.Description,
		Date:            m.Date,
		Duration:        m.Duration,
		Participants:    m.Participants,
		MaxParticipants: m.MaxParticipants,
		Visibility:      event.Visibility(m.Visibility),
		OwnerID:         m.OwnerID,
	}
	if m.Location != nil {
		e.Location = event.Location{Lat: m.Location.Lat, Lng: m.Location.Lng, Name: m.Location.Name}
	}
	return e, nil
}
