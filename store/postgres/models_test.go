package postgres

import (
	"testing"
	"time"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

func TestEventModel_ZeroDateStoredAsNull(t *testing.T) {
	e := &event.Event{ID: id.NewEventID(), Title: "draft", OwnerID: "alice"}
	m := toEventModel(e)
	if m.Date != nil {
		t.Fatalf("expected nil date, got %v", m.Date)
	}
	if m.Participants == nil {
		t.Fatal("participants should never be stored as null")
	}
}

func TestFromEventModels_DropsUnreadable(t *testing.T) {
	at := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	good := toEventModel(&event.Event{ID: id.NewEventID(), Title: "five-a-side", Date: at, OwnerID: "alice"})
	noDate := toEventModel(&event.Event{ID: id.NewEventID(), Title: "someday", OwnerID: "alice"})
	badID := *good
	badID.ID = "garbage"

	got := fromEventModels([]eventModel{*good, *noDate, badID})
	if len(got) != 1 {
		t.Fatalf("expected 1 readable event, got %d", len(got))
	}
	if got[0].Title != "five-a-side" {
		t.Fatalf("kept the wrong event: %q", got[0].Title)
	}
}
