package event

import (
	"context"

	"github.com/xraph/huddle/id"
)

// MaxBulkIDs is the largest ID set a single GetEvents call may request.
const MaxBulkIDs = 30

// LocalStore is the on-device mirror of remote events. It does no intent
// filtering; callers scan and filter in memory. Implementations must allow
// concurrent reads while a write is in progress.
type LocalStore interface {
	// GetCachedEvent returns a cached event, or huddle.ErrEventNotCached.
	GetCachedEvent(ctx context.Context, evtID id.ID) (*Event, error)

	// ListCachedEvents returns every cached event, unfiltered.
	ListCachedEvents(ctx context.Context) ([]*Event, error)

	// UpsertEvent inserts or replaces an event by ID.
	UpsertEvent(ctx context.Context, evt *Event) error

	// UpsertEvents inserts or replaces a batch of events by ID.
	UpsertEvents(ctx context.Context, evts []*Event) error

	// DeleteCachedEvent evicts an event. Evicting a missing event is not an error.
	DeleteCachedEvent(ctx context.Context, evtID id.ID) error
}

// Source is the authoritative event store. Every write makes sure the owner
// is a participant before persisting.
type Source interface {
	// NewEventID generates a fresh identifier without persisting anything.
	NewEventID() id.ID

	// AddEvent persists a new event.
	AddEvent(ctx context.Context, evt *Event) error

	// EditEvent fully replaces the event stored under evtID.
	EditEvent(ctx context.Context, evtID id.ID, evt *Event) error

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, evtID id.ID) error

	// GetEvent returns one event, or huddle.ErrEventNotFound.
	GetEvent(ctx context.Context, evtID id.ID) (*Event, error)

	// GetEvents fetches up to MaxBulkIDs events. Unreadable records are
	// dropped rather than failing the batch.
	GetEvents(ctx context.Context, ids []id.ID) ([]*Event, error)

	// ListEvents runs the intent's server-side predicate for the
	// authenticated caller and returns raw, unsorted results. It fails with
	// huddle.ErrUnauthenticated when no caller is known.
	ListEvents(ctx context.Context, intent Intent) ([]*Event, error)

	// ListCommonEvents returns events shared by all userIDs, oldest first.
	// An empty userIDs yields an empty result.
	ListCommonEvents(ctx context.Context, userIDs []string) ([]*Event, error)
}
