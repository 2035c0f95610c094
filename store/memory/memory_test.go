package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/scope"
)

func ctx() context.Context { return context.Background() }

func newEvent(owner string, at time.Time, participants ...string) *event.Event {
	return &event.Event{
		ID:           id.NewEventID(),
		Kind:         event.KindSports,
		Title:        "run club",
		Date:         at,
		Duration:     45,
		OwnerID:      owner,
		Participants: participants,
		Visibility:   event.VisibilityPrivate,
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func TestLifecycle(t *testing.T) {
	c := NewCache()
	s := NewSource(nil)

	for _, l := range []interface {
		Migrate(context.Context) error
		Ping(context.Context) error
		Close() error
	}{c, s} {
		if err := l.Migrate(ctx()); err != nil {
			t.Fatal(err)
		}
		if err := l.Ping(ctx()); err != nil {
			t.Fatal(err)
		}
		if err := l.Close(); err != nil {
			t.Fatal(err)
		}
		if err := l.Ping(ctx()); !errors.Is(err, huddle.ErrStoreClosed) {
			t.Fatalf("expected ErrStoreClosed, got %v", err)
		}
	}
}

// ──────────────────────────────────────────────────
// Cache
// ──────────────────────────────────────────────────

func TestCache_UpsertIsIdempotent(t *testing.T) {
	c := NewCache()
	e := newEvent("alice", time.Now())

	for range 3 {
		if err := c.UpsertEvents(ctx(), []*event.Event{e}); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached event, got %d", c.Len())
	}

	e.Title = "renamed"
	if err := c.UpsertEvent(ctx(), e); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetCachedEvent(ctx(), e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "renamed" {
		t.Fatalf("expected replaced title, got %q", got.Title)
	}
}

func TestCache_CopiesOnReadAndWrite(t *testing.T) {
	c := NewCache()
	e := newEvent("alice", time.Now(), "bob")
	_ = c.UpsertEvent(ctx(), e)

	e.Participants[0] = "mallory"
	got, _ := c.GetCachedEvent(ctx(), e.ID)
	if got.Participants[0] != "bob" {
		t.Fatal("cache shares participant slice with the writer")
	}

	got.Title = "changed"
	again, _ := c.GetCachedEvent(ctx(), e.ID)
	if again.Title == "changed" {
		t.Fatal("cache shares the event with the reader")
	}
}

func TestCache_MissAndDelete(t *testing.T) {
	c := NewCache()
	if _, err := c.GetCachedEvent(ctx(), id.NewEventID()); !errors.Is(err, huddle.ErrEventNotCached) {
		t.Fatalf("expected ErrEventNotCached, got %v", err)
	}

	e := newEvent("alice", time.Now())
	_ = c.UpsertEvent(ctx(), e)
	if err := c.DeleteCachedEvent(ctx(), e.ID); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteCachedEvent(ctx(), e.ID); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	all, _ := c.ListCachedEvents(ctx())
	if len(all) != 0 {
		t.Fatalf("expected empty cache, got %d", len(all))
	}
}

// ──────────────────────────────────────────────────
// Source
// ──────────────────────────────────────────────────

func TestSource_AddEnsuresOwner(t *testing.T) {
	s := NewSource(scope.Fixed("alice"))
	e := newEvent("alice", time.Now(), "bob")

	if err := s.AddEvent(ctx(), e); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetEvent(ctx(), e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasParticipant("alice") {
		t.Fatalf("owner missing from participants: %v", got.Participants)
	}
	if err := s.AddEvent(ctx(), e); !errors.Is(err, huddle.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
}

func TestSource_EditAndDelete(t *testing.T) {
	s := NewSource(nil)
	e := newEvent("alice", time.Now())

	if err := s.EditEvent(ctx(), e.ID, e); !errors.Is(err, huddle.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound editing a missing event, got %v", err)
	}
	s.Seed(e)

	edited := e.Clone()
	edited.Participants = nil
	edited.Title = "tempo run"
	if err := s.EditEvent(ctx(), e.ID, edited); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetEvent(ctx(), e.ID)
	if got.Title != "tempo run" || !got.HasParticipant("alice") {
		t.Fatalf("edit not applied or owner dropped: %+v", got)
	}

	if err := s.DeleteEvent(ctx(), e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEvent(ctx(), e.ID); !errors.Is(err, huddle.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound after delete, got %v", err)
	}
	if err := s.DeleteEvent(ctx(), e.ID); !errors.Is(err, huddle.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound deleting twice, got %v", err)
	}
}

func TestSource_GetEventsDropsUnreadable(t *testing.T) {
	s := NewSource(nil)
	good := newEvent("alice", time.Now())
	bad := newEvent("", time.Now())
	s.Seed(good)
	s.PutRaw(bad)

	got, err := s.GetEvents(ctx(), []id.ID{good.ID, bad.ID, id.NewEventID()})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != good.ID {
		t.Fatalf("expected only the readable event, got %d", len(got))
	}
	if _, err := s.GetEvent(ctx(), bad.ID); !errors.Is(err, huddle.ErrEventNotFound) {
		t.Fatalf("expected unreadable record to read as not found, got %v", err)
	}
}

func TestSource_GetEventsCap(t *testing.T) {
	s := NewSource(nil)
	ids := make([]id.ID, event.MaxBulkIDs+1)
	for i := range ids {
		ids[i] = id.NewEventID()
	}
	if _, err := s.GetEvents(ctx(), ids); !errors.Is(err, huddle.ErrTooManyIDs) {
		t.Fatalf("expected ErrTooManyIDs, got %v", err)
	}
	if _, err := s.GetEvents(ctx(), ids[:event.MaxBulkIDs]); err != nil {
		t.Fatalf("expected cap-sized batch to succeed, got %v", err)
	}
}

func TestSource_ListEvents(t *testing.T) {
	s := NewSource(scope.Fixed("alice"))
	mine := newEvent("alice", time.Now())
	mine.Visibility = event.VisibilityPublic
	theirs := newEvent("bob", time.Now())
	theirs.Visibility = event.VisibilityPublic
	hidden := newEvent("bob", time.Now())
	s.Seed(mine, theirs, hidden)

	overview, err := s.ListEvents(ctx(), event.Overview)
	if err != nil {
		t.Fatal(err)
	}
	if len(overview) != 1 || overview[0].ID != mine.ID {
		t.Fatalf("expected only alice's event, got %d", len(overview))
	}

	search, _ := s.ListEvents(ctx(), event.Search)
	if len(search) != 2 {
		t.Fatalf("expected both public events, got %d", len(search))
	}

	// The map query is the raw union, so mine appears twice.
	union, _ := s.ListEvents(ctx(), event.Map)
	if len(union) != 3 {
		t.Fatalf("expected raw union of 3, got %d", len(union))
	}

	bobs, _ := s.ListEvents(scope.WithUser(ctx(), "bob"), event.Overview)
	if len(bobs) != 2 {
		t.Fatalf("expected context user to win, got %d events", len(bobs))
	}
}

func TestSource_ListEventsRequiresUser(t *testing.T) {
	s := NewSource(scope.Anonymous)
	if _, err := s.ListEvents(ctx(), event.Overview); !errors.Is(err, huddle.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSource_ListCommonEvents(t *testing.T) {
	s := NewSource(nil)
	now := time.Now()
	late := newEvent("alice", now.Add(2*time.Hour), "bob")
	early := newEvent("bob", now.Add(time.Hour), "alice")
	solo := newEvent("carol", now)
	s.Seed(late, early, solo)

	empty, err := s.ListCommonEvents(ctx(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result for no users, got %d (%v)", len(empty), err)
	}

	got, _ := s.ListCommonEvents(ctx(), []string{"alice", "bob"})
	if len(got) != 2 || got[0].ID != early.ID || got[1].ID != late.ID {
		t.Fatal("expected shared events sorted by date")
	}
}

func TestSource_FailureInjection(t *testing.T) {
	s := NewSource(scope.Fixed("alice"))
	boom := errors.New("backend down")

	s.FailNext(1, boom)
	if _, err := s.ListEvents(ctx(), event.Overview); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, err := s.ListEvents(ctx(), event.Overview); err != nil {
		t.Fatalf("expected recovery after one failure, got %v", err)
	}

	s.SetErr(boom)
	if err := s.Ping(ctx()); !errors.Is(err, boom) {
		t.Fatalf("expected ping to fail while error is set, got %v", err)
	}
	s.SetErr(nil)
	if err := s.Ping(ctx()); err != nil {
		t.Fatalf("expected ping to recover, got %v", err)
	}
}
