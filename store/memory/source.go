package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/scope"
	huddlestore "github.com/xraph/huddle/store"
)

// compile-time interface check.
var _ huddlestore.Remote = (*Source)(nil)

// Source is an in-memory store.Remote. It answers intent queries the way a
// document backend would: raw, unsorted, with the map intent returned as the
// union of the participant and public queries. Failures can be injected to
// exercise cache fallback.
type Source struct {
	mu       sync.RWMutex
	events   map[string]*event.Event // keyed by ID string
	order    []string                // insertion order, for stable raw results
	identity scope.Identity
	closed   bool

	failErr  error
	failNext int
	calls    int
}

// NewSource creates an empty source. ident supplies the caller for
// ListEvents when the context carries no user; it may be nil.
func NewSource(ident scope.Identity) *Source {
	return &Source{
		events:   make(map[string]*event.Event),
		identity: ident,
	}
}

// ──────────────────────────────────────────────────
// Test helpers
// ──────────────────────────────────────────────────

// Seed stores events as if they had been written through AddEvent.
func (s *Source) Seed(evts ...*event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range evts {
		c := e.Clone()
		c.EnsureOwner()
		s.put(c)
	}
}

// PutRaw stores a record verbatim, skipping normalization. Use it to plant
// unreadable records.
func (s *Source) PutRaw(e *event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(e.Clone())
}

// SetErr makes every call fail with err until cleared with SetErr(nil).
func (s *Source) SetErr(err error) {
	s.mu.Lock()
	s.failErr = err
	s.failNext = 0
	s.mu.Unlock()
}

// FailNext makes the next n calls fail with err.
func (s *Source) FailNext(n int, err error) {
	s.mu.Lock()
	s.failErr = err
	s.failNext = n
	s.mu.Unlock()
}

// Calls returns how many data calls the source has served or refused.
func (s *Source) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// Len returns the number of stored events.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory source.
func (s *Source) Migrate(_ context.Context) error { return nil }

// Ping fails while an error is injected or after Close.
func (s *Source) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return huddle.ErrStoreClosed
	}
	if s.failErr != nil && s.failNext == 0 {
		return s.failErr
	}
	return nil
}

// Close marks the source as closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// event.Source
// ──────────────────────────────────────────────────

// NewEventID generates a fresh event ID.
func (s *Source) NewEventID() id.ID { return id.NewEventID() }

// AddEvent stores a new event with its owner among the participants.
func (s *Source) AddEvent(_ context.Context, evt *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return err
	}
	if _, exists := s.events[evt.ID.String()]; exists {
		return fmt.Errorf("%w: %s", huddle.ErrDuplicateEvent, evt.ID)
	}
	c := evt.Clone()
	c.EnsureOwner()
	s.put(c)
	return nil
}

// EditEvent replaces the stored event.
func (s *Source) EditEvent(_ context.Context, evtID id.ID, evt *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return err
	}
	if _, ok := s.events[evtID.String()]; !ok {
		return huddle.ErrEventNotFound
	}
	c := evt.Clone()
	c.ID = evtID
	c.EnsureOwner()
	s.put(c)
	return nil
}

// DeleteEvent removes an event.
func (s *Source) DeleteEvent(_ context.Context, evtID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return err
	}
	key := evtID.String()
	if _, ok := s.events[key]; !ok {
		return huddle.ErrEventNotFound
	}
	delete(s.events, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetEvent returns one event. Unreadable records count as missing.
func (s *Source) GetEvent(_ context.Context, evtID id.ID) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	e, ok := s.events[evtID.String()]
	if !ok || !e.Readable() {
		return nil, huddle.ErrEventNotFound
	}
	return e.Clone(), nil
}

// GetEvents fetches up to event.MaxBulkIDs events, dropping unreadable ones.
func (s *Source) GetEvents(_ context.Context, ids []id.ID) ([]*event.Event, error) {
	if len(ids) > event.MaxBulkIDs {
		return nil, fmt.Errorf("%w: %d > %d", huddle.ErrTooManyIDs, len(ids), event.MaxBulkIDs)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	out := make([]*event.Event, 0, len(ids))
	for _, evtID := range ids {
		if e, ok := s.events[evtID.String()]; ok && e.Readable() {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// ListEvents runs the intent's server-side predicate for the caller.
func (s *Source) ListEvents(ctx context.Context, intent event.Intent) ([]*event.Event, error) {
	uid, ok := scope.Resolve(ctx, s.identity)
	if !ok {
		return nil, huddle.ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}

	joined := s.scan(func(e *event.Event) bool { return e.HasParticipant(uid) })
	public := func() []*event.Event {
		return s.scan(func(e *event.Event) bool { return e.Visibility == event.VisibilityPublic })
	}

	switch intent {
	case event.Overview, event.History:
		return joined, nil
	case event.Search:
		return public(), nil
	case event.Map:
		return append(joined, public()...), nil
	default:
		return nil, fmt.Errorf("%w: %q", huddle.ErrInvalidIntent, intent)
	}
}

// ListCommonEvents returns events shared by all userIDs, oldest first.
func (s *Source) ListCommonEvents(_ context.Context, userIDs []string) ([]*event.Event, error) {
	if len(userIDs) == 0 {
		return []*event.Event{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	out := s.scan(func(e *event.Event) bool { return e.HasAllParticipants(userIDs) })
	event.SortByDate(out)
	return out, nil
}

// enter counts a call and applies injected failures. Callers hold s.mu.
func (s *Source) enter() error {
	s.calls++
	if s.closed {
		return huddle.ErrStoreClosed
	}
	if s.failErr == nil {
		return nil
	}
	err := s.failErr
	if s.failNext > 0 {
		s.failNext--
		if s.failNext == 0 {
			s.failErr = nil
		}
	}
	return err
}

func (s *Source) put(e *event.Event) {
	key := e.ID.String()
	if _, exists := s.events[key]; !exists {
		s.order = append(s.order, key)
	}
	s.events[key] = e
}

// scan returns copies of readable events matching pred, in insertion order.
// Callers hold s.mu.
func (s *Source) scan(pred func(*event.Event) bool) []*event.Event {
	var out []*event.Event
	for _, key := range s.order {
		e := s.events[key]
		if e.Readable() && pred(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}
