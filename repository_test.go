package huddle_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/network"
	"github.com/xraph/huddle/notify"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store/memory"
)

var errBackend = errors.New("backend unavailable")

type fixture struct {
	repo      *huddle.Repository
	local     *memory.Cache
	remote    *memory.Source
	net       *network.Toggle
	session   *scope.Session
	scheduler *notify.Recorder
	now       time.Time
}

func ctx() context.Context { return context.Background() }

func setup(t *testing.T, extra ...huddle.Option) *fixture {
	t.Helper()
	f := &fixture{
		local:     memory.NewCache(),
		net:       network.NewToggle(true),
		session:   scope.NewSession(),
		scheduler: &notify.Recorder{},
		now:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	f.session.SignIn("alice")
	f.remote = memory.NewSource(f.session)

	opts := []huddle.Option{
		huddle.WithLocal(f.local),
		huddle.WithRemote(f.remote),
		huddle.WithNetwork(f.net),
		huddle.WithIdentity(f.session),
		huddle.WithScheduler(f.scheduler),
		huddle.WithClock(func() time.Time { return f.now }),
		huddle.WithRemoteRateLimit(0),
	}
	repo, err := huddle.New(append(opts, extra...)...)
	require.NoError(t, err)
	f.repo = repo
	return f
}

func (f *fixture) event(owner string, in time.Duration, duration int, participants ...string) *event.Event {
	return &event.Event{
		ID:           id.NewEventID(),
		Kind:         event.KindSocial,
		Title:        fmt.Sprintf("meetup by %s", owner),
		Date:         f.now.Add(in),
		Duration:     duration,
		OwnerID:      owner,
		Participants: participants,
		Visibility:   event.VisibilityPrivate,
	}
}

// ──────────────────────────────────────────────────
// Construction
// ──────────────────────────────────────────────────

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := huddle.New(huddle.WithRemote(memory.NewSource(nil)), huddle.WithNetwork(network.Always))
	require.ErrorIs(t, err, huddle.ErrNoLocalStore)

	_, err = huddle.New(huddle.WithLocal(memory.NewCache()), huddle.WithNetwork(network.Always))
	require.ErrorIs(t, err, huddle.ErrNoRemoteSource)

	_, err = huddle.New(huddle.WithLocal(memory.NewCache()), huddle.WithRemote(memory.NewSource(nil)))
	require.ErrorIs(t, err, huddle.ErrNoNetwork)
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

func TestListEvents_OnlineMirrorsIntoCache(t *testing.T) {
	f := setup(t)
	a := f.event("alice", time.Hour, 60)
	b := f.event("bob", 2*time.Hour, 60, "alice")
	f.remote.Seed(a, b)

	for range 3 {
		got, err := f.repo.ListEvents(ctx(), event.Overview)
		require.NoError(t, err)
		require.Len(t, got, 2)
	}
	assert.Equal(t, 2, f.local.Len(), "repeated reads must not duplicate cache rows")
}

func TestListEvents_RemoteFailureFallsBackToCache(t *testing.T) {
	f := setup(t)
	a := f.event("alice", time.Hour, 60)
	f.remote.Seed(a)

	_, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)

	f.remote.SetErr(errBackend)
	got, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestListEvents_OfflineAppliesSameFilter(t *testing.T) {
	f := setup(t)
	past := f.event("alice", -48*time.Hour, 60)
	future := f.event("alice", time.Hour, 60)
	stranger := f.event("bob", -72*time.Hour, 60)
	f.remote.Seed(past, future, stranger)

	online, err := f.repo.ListEvents(ctx(), event.History)
	require.NoError(t, err)
	require.NoError(t, f.local.UpsertEvent(ctx(), stranger))

	f.net.Set(false)
	offline, err := f.repo.ListEvents(ctx(), event.History)
	require.NoError(t, err)

	require.Len(t, online, 1)
	require.Len(t, offline, 1)
	assert.Equal(t, online[0].ID, offline[0].ID)
	assert.Equal(t, past.ID, offline[0].ID)
}

func TestListEvents_OnlineAndOfflineAgreeForEveryIntent(t *testing.T) {
	f := setup(t)
	berlin := event.Location{Lat: 52.52, Lng: 13.40, Name: "Berlin"}

	mine := f.event("alice", time.Hour, 60)
	mine.Location = berlin
	finished := f.event("alice", -48*time.Hour, 60)
	joined := f.event("bob", -10*time.Minute, 60, "alice")
	open := f.event("bob", 3*time.Hour, 60)
	open.Visibility = event.VisibilityPublic
	open.Location = berlin
	openPast := f.event("carol", -72*time.Hour, 60)
	openPast.Visibility = event.VisibilityPublic
	openPast.Location = berlin
	hidden := f.event("bob", 2*time.Hour, 60, "carol")
	hidden.Location = berlin
	hiddenPast := f.event("carol", -24*time.Hour, 60, "bob")
	f.remote.Seed(mine, finished, joined, open, openPast, hidden, hiddenPast)

	// The cache also holds events of other users, as left behind by
	// GetEvent, GetEvents or CommonEvents.
	all, err := f.remote.GetEvents(ctx(), []id.ID{
		mine.ID, finished.ID, joined.ID, open.ID, openPast.ID, hidden.ID, hiddenPast.ID,
	})
	require.NoError(t, err)
	require.NoError(t, f.local.UpsertEvents(ctx(), all))

	for _, intent := range event.Intents {
		t.Run(string(intent), func(t *testing.T) {
			f.net.Set(true)
			online, err := f.repo.ListEvents(ctx(), intent)
			require.NoError(t, err)

			f.net.Set(false)
			offline, err := f.repo.ListEvents(ctx(), intent)
			require.NoError(t, err)

			assert.Equal(t, eventIDs(online), eventIDs(offline))
		})
	}
}

func TestListEvents_OfflineMapHidesPrivateEventsOfOthers(t *testing.T) {
	f := setup(t)
	hidden := f.event("bob", time.Hour, 60, "carol")
	hidden.Location = event.Location{Lat: 41.39, Lng: 2.17, Name: "Barcelona"}
	f.remote.Seed(hidden)

	_, err := f.repo.CommonEvents(ctx(), []string{"bob", "carol"})
	require.NoError(t, err)
	require.Equal(t, 1, f.local.Len())

	online, err := f.repo.ListEvents(ctx(), event.Map)
	require.NoError(t, err)
	assert.Empty(t, online)

	f.net.Set(false)
	offline, err := f.repo.ListEvents(ctx(), event.Map)
	require.NoError(t, err)
	assert.Empty(t, offline)
}

func TestListEvents_OfflineWithoutUserIsEmpty(t *testing.T) {
	f := setup(t)
	f.remote.Seed(f.event("alice", time.Hour, 60))
	_, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)

	f.net.Set(false)
	f.session.SignOut()
	got, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListEvents_OnlineWithoutUserFallsBackToEmpty(t *testing.T) {
	f := setup(t)
	f.session.SignOut()
	got, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListEvents_MapDeduplicates(t *testing.T) {
	f := setup(t)
	both := f.event("alice", time.Hour, 60)
	both.Visibility = event.VisibilityPublic
	both.Location = event.Location{Lat: 52.52, Lng: 13.40, Name: "Berlin"}
	f.remote.Seed(both)

	got, err := f.repo.ListEvents(ctx(), event.Map)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, both.ID, got[0].ID)
}

func TestListEvents_RejectsUnknownIntent(t *testing.T) {
	f := setup(t)
	_, err := f.repo.ListEvents(ctx(), event.Intent("everything"))
	require.ErrorIs(t, err, huddle.ErrInvalidIntent)
}

func TestListEvents_RateLimitedReadServedFromCache(t *testing.T) {
	f := setup(t, huddle.WithRemoteRateLimit(1))
	a := f.event("alice", time.Hour, 60)
	f.remote.Seed(a)

	_, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)
	calls := f.remote.Calls()

	got, err := f.repo.ListEvents(ctx(), event.Overview)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, calls, f.remote.Calls(), "throttled read must not reach the remote")
}

func TestGetEvent_OfflineNeverFetched(t *testing.T) {
	f := setup(t)
	f.net.Set(false)
	_, err := f.repo.GetEvent(ctx(), id.NewEventID())
	require.ErrorIs(t, err, huddle.ErrOfflineUnavailable)
	assert.NotErrorIs(t, err, huddle.ErrEventNotFound)
}

func TestGetEvent_CachedCopySurvivesGoingOffline(t *testing.T) {
	f := setup(t)
	a := f.event("alice", time.Hour, 60)
	f.remote.Seed(a)

	_, err := f.repo.GetEvent(ctx(), a.ID)
	require.NoError(t, err)

	f.net.Set(false)
	got, err := f.repo.GetEvent(ctx(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
}

func TestGetEvent_OnlineFailure(t *testing.T) {
	f := setup(t)
	cached := f.event("alice", time.Hour, 60)
	require.NoError(t, f.local.UpsertEvent(ctx(), cached))
	f.remote.SetErr(errBackend)

	got, err := f.repo.GetEvent(ctx(), cached.ID)
	require.NoError(t, err, "stale but present copy should be served")
	assert.Equal(t, cached.ID, got.ID)

	_, err = f.repo.GetEvent(ctx(), id.NewEventID())
	require.ErrorIs(t, err, errBackend, "without a cached copy the original error is re-raised")
}

func TestGetEvent_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.repo.GetEvent(ctx(), id.NewEventID())
	require.ErrorIs(t, err, huddle.ErrEventNotFound)
}

func TestGetEvents_BatchesAndKeepsOrder(t *testing.T) {
	f := setup(t)
	ids := make([]id.ID, 0, event.MaxBulkIDs+5)
	for i := range event.MaxBulkIDs + 5 {
		e := f.event("alice", time.Duration(i)*time.Hour, 60)
		f.remote.Seed(e)
		ids = append(ids, e.ID)
	}
	// Reverse to prove results follow request order, not date order.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	got, err := f.repo.GetEvents(ctx(), ids)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	for i := range ids {
		assert.Equal(t, ids[i], got[i].ID)
	}
	assert.Equal(t, len(ids), f.local.Len())
}

func TestGetEvents_OfflineReturnsCachedSubset(t *testing.T) {
	f := setup(t)
	a := f.event("alice", time.Hour, 60)
	b := f.event("alice", 2*time.Hour, 60)
	require.NoError(t, f.local.UpsertEvent(ctx(), a))

	f.net.Set(false)
	got, err := f.repo.GetEvents(ctx(), []id.ID{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestCommonEvents(t *testing.T) {
	f := setup(t)
	late := f.event("alice", 3*time.Hour, 60, "bob")
	early := f.event("bob", time.Hour, 60, "alice")
	other := f.event("carol", 2*time.Hour, 60)
	f.remote.Seed(late, early, other)

	got, err := f.repo.CommonEvents(ctx(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.repo.CommonEvents(ctx(), []string{"alice"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)

	f.net.Set(false)
	offline, err := f.repo.CommonEvents(ctx(), []string{"alice", "bob"})
	require.NoError(t, err)
	require.Len(t, offline, 2)
	assert.Equal(t, early.ID, offline[0].ID)
}

func TestRead_CancelledContextDoesNotMirror(t *testing.T) {
	f := setup(t)
	f.remote.Seed(f.event("alice", time.Hour, 60))

	cctx, cancel := context.WithCancel(ctx())
	cancel()
	_, _ = f.repo.ListEvents(cctx, event.Overview)
	assert.Equal(t, 0, f.local.Len())
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

func TestAddEvent_RoundTrip(t *testing.T) {
	f := setup(t)
	in := f.event("", time.Hour, 60, "bob")
	in.ID = id.Nil

	added, err := f.repo.AddEvent(ctx(), in)
	require.NoError(t, err)
	assert.False(t, added.ID.IsNil())
	assert.Equal(t, "alice", added.OwnerID)
	assert.True(t, in.ID.IsNil(), "caller's event must not be modified")

	got, err := f.repo.GetEvent(ctx(), added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.Title, got.Title)
	assert.Equal(t, added.Date, got.Date)
	assert.Contains(t, got.Participants, "alice")
	assert.Contains(t, got.Participants, "bob")
	assert.Equal(t, 1, f.local.Len())
}

func TestAddEvent_SchedulesUpcoming(t *testing.T) {
	f := setup(t)
	added, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.NoError(t, err)
	assert.Equal(t, 1, f.scheduler.Count(notify.OpSchedule, added.ID))

	running, err := f.repo.AddEvent(ctx(), f.event("alice", -10*time.Minute, 60))
	require.NoError(t, err)
	assert.Equal(t, 0, f.scheduler.Count(notify.OpSchedule, running.ID))
}

func TestAddEvent_Unauthenticated(t *testing.T) {
	f := setup(t)
	f.session.SignOut()
	_, err := f.repo.AddEvent(ctx(), f.event("", time.Hour, 60))
	require.ErrorIs(t, err, huddle.ErrUnauthenticated)
	assert.Equal(t, 0, f.remote.Len())
}

func TestAddEvent_Invalid(t *testing.T) {
	f := setup(t)
	bad := f.event("alice", time.Hour, 0)
	_, err := f.repo.AddEvent(ctx(), bad)
	require.ErrorIs(t, err, huddle.ErrInvalidEvent)
	assert.Equal(t, 0, f.remote.Len())
}

func TestAddEvent_RemoteErrorPassesThrough(t *testing.T) {
	f := setup(t)
	f.remote.SetErr(errBackend)
	_, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.ErrorIs(t, err, errBackend)
	assert.Equal(t, 0, f.local.Len())
	assert.Empty(t, f.scheduler.Calls())
}

func TestWrites_OfflineFailWithoutSideEffects(t *testing.T) {
	f := setup(t)
	existing := f.event("alice", time.Hour, 60)
	f.remote.Seed(existing)
	require.NoError(t, f.local.UpsertEvent(ctx(), existing))
	f.net.Set(false)

	_, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.ErrorIs(t, err, huddle.ErrOfflineUnavailable)

	edited := existing.Clone()
	edited.Title = "changed"
	_, err = f.repo.EditEvent(ctx(), existing.ID, edited)
	require.ErrorIs(t, err, huddle.ErrOfflineUnavailable)

	err = f.repo.DeleteEvent(ctx(), existing.ID)
	require.ErrorIs(t, err, huddle.ErrOfflineUnavailable)

	assert.Equal(t, 1, f.remote.Len())
	assert.Equal(t, 1, f.local.Len())
	cached, err := f.local.GetCachedEvent(ctx(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.Title, cached.Title)
	assert.Empty(t, f.scheduler.Calls())
}

func TestEditEvent_IntoPastCancelsWithoutReschedule(t *testing.T) {
	f := setup(t)
	added, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.NoError(t, err)
	f.scheduler.Reset()

	moved := added.Clone()
	moved.Date = f.now.Add(-2 * time.Hour)
	_, err = f.repo.EditEvent(ctx(), added.ID, moved)
	require.NoError(t, err)

	assert.Equal(t, 1, f.scheduler.Count(notify.OpCancel, added.ID))
	assert.Equal(t, 0, f.scheduler.Count(notify.OpSchedule, added.ID))
}

func TestEditEvent_UpcomingCancelsThenReschedules(t *testing.T) {
	f := setup(t)
	added, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.NoError(t, err)
	f.scheduler.Reset()

	later := added.Clone()
	later.Date = f.now.Add(3 * time.Hour)
	_, err = f.repo.EditEvent(ctx(), added.ID, later)
	require.NoError(t, err)

	calls := f.scheduler.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, notify.OpCancel, calls[0].Op)
	assert.Equal(t, notify.OpSchedule, calls[1].Op)

	cached, err := f.local.GetCachedEvent(ctx(), added.ID)
	require.NoError(t, err)
	assert.True(t, cached.Date.Equal(later.Date))
}

func TestEditEvent_OwnerImmutable(t *testing.T) {
	f := setup(t)
	added, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.NoError(t, err)

	stolen := added.Clone()
	stolen.OwnerID = "mallory"
	_, err = f.repo.EditEvent(ctx(), added.ID, stolen)
	require.ErrorIs(t, err, huddle.ErrOwnerImmutable)

	blank := added.Clone()
	blank.OwnerID = ""
	blank.Participants = nil
	edited, err := f.repo.EditEvent(ctx(), added.ID, blank)
	require.NoError(t, err)
	assert.Equal(t, "alice", edited.OwnerID)
	assert.Contains(t, edited.Participants, "alice")
}

func TestEditEvent_OwnerImmutableWithoutCachedCopy(t *testing.T) {
	f := setup(t)
	theirs := f.event("bob", time.Hour, 60, "alice")
	f.remote.Seed(theirs)
	require.Equal(t, 0, f.local.Len())

	claimed := theirs.Clone()
	claimed.OwnerID = "alice"
	_, err := f.repo.EditEvent(ctx(), theirs.ID, claimed)
	require.ErrorIs(t, err, huddle.ErrOwnerImmutable)
	assert.Empty(t, f.scheduler.Calls())

	stored, err := f.remote.GetEvent(ctx(), theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", stored.OwnerID)

	renamed := theirs.Clone()
	renamed.OwnerID = ""
	renamed.Title = "rescheduled meetup"
	edited, err := f.repo.EditEvent(ctx(), theirs.ID, renamed)
	require.NoError(t, err)
	assert.Equal(t, "bob", edited.OwnerID)
}

func TestEditEvent_MissingRemote(t *testing.T) {
	f := setup(t)
	ghost := f.event("alice", time.Hour, 60)
	_, err := f.repo.EditEvent(ctx(), ghost.ID, ghost)
	require.ErrorIs(t, err, huddle.ErrEventNotFound)
	assert.Empty(t, f.scheduler.Calls())
}

func TestDeleteEvent_CancelsExactlyOnce(t *testing.T) {
	for _, in := range []time.Duration{time.Hour, -10 * time.Minute, -72 * time.Hour} {
		f := setup(t)
		e := f.event("alice", in, 60)
		f.remote.Seed(e)
		require.NoError(t, f.local.UpsertEvent(ctx(), e))

		require.NoError(t, f.repo.DeleteEvent(ctx(), e.ID))
		assert.Equal(t, 1, f.scheduler.Count(notify.OpCancel, e.ID), "start offset %s", in)
		assert.Equal(t, 0, f.local.Len())
		assert.Equal(t, 0, f.remote.Len())
	}
}

func TestScheduler_ErrorsNeverFailWrites(t *testing.T) {
	f := setup(t)
	f.scheduler.Err = errors.New("notifications disabled")

	added, err := f.repo.AddEvent(ctx(), f.event("alice", time.Hour, 60))
	require.NoError(t, err)
	_, err = f.repo.EditEvent(ctx(), added.ID, added)
	require.NoError(t, err)
	require.NoError(t, f.repo.DeleteEvent(ctx(), added.ID))
}

// cancelOnDelete cancels the caller's context right after the remote
// accepts a delete.
type cancelOnDelete struct {
	*memory.Source
	cancel context.CancelFunc
}

func (s cancelOnDelete) DeleteEvent(ctx context.Context, evtID id.ID) error {
	err := s.Source.DeleteEvent(ctx, evtID)
	s.cancel()
	return err
}

// ctxScheduler records the context state seen by each call.
type ctxScheduler struct {
	seen []error
}

func (s *ctxScheduler) Schedule(ctx context.Context, _ *event.Event) error {
	s.seen = append(s.seen, ctx.Err())
	return ctx.Err()
}

func (s *ctxScheduler) Cancel(ctx context.Context, _ id.ID) error {
	s.seen = append(s.seen, ctx.Err())
	return ctx.Err()
}

func TestDeleteEvent_CancelsReminderAfterCallerCancels(t *testing.T) {
	c, cancel := context.WithCancel(ctx())
	defer cancel()

	source := memory.NewSource(scope.Fixed("alice"))
	sched := &ctxScheduler{}
	repo, err := huddle.New(
		huddle.WithLocal(memory.NewCache()),
		huddle.WithRemote(cancelOnDelete{Source: source, cancel: cancel}),
		huddle.WithNetwork(network.Always),
		huddle.WithIdentity(scope.Fixed("alice")),
		huddle.WithScheduler(sched),
		huddle.WithRemoteRateLimit(0),
	)
	require.NoError(t, err)

	e := &event.Event{
		ID:         id.NewEventID(),
		Kind:       event.KindSports,
		Title:      "five-a-side",
		Date:       time.Now().Add(time.Hour),
		Duration:   60,
		Visibility: event.VisibilityPrivate,
		OwnerID:    "alice",
	}
	source.Seed(e)

	require.NoError(t, repo.DeleteEvent(c, e.ID))
	require.Error(t, c.Err())
	require.Len(t, sched.seen, 1)
	assert.NoError(t, sched.seen[0], "cancel must not inherit the caller's cancellation")
}

func TestScheduler_AbsentIsSkipped(t *testing.T) {
	local := memory.NewCache()
	repo, err := huddle.New(
		huddle.WithLocal(local),
		huddle.WithRemote(memory.NewSource(nil)),
		huddle.WithNetwork(network.Always),
		huddle.WithIdentity(scope.Fixed("alice")),
	)
	require.NoError(t, err)

	added, err := repo.AddEvent(ctx(), &event.Event{
		Kind:       event.KindActivity,
		Title:      "board games",
		Date:       time.Now().Add(time.Hour),
		Duration:   120,
		Visibility: event.VisibilityPublic,
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteEvent(ctx(), added.ID))
}

// ──────────────────────────────────────────────────
// Warm & lifecycle
// ──────────────────────────────────────────────────

func TestWarm(t *testing.T) {
	f := setup(t)
	mine := f.event("alice", time.Hour, 60)
	public := f.event("bob", time.Hour, 60)
	public.Visibility = event.VisibilityPublic
	f.remote.Seed(mine, public)

	n, err := f.repo.Warm(ctx(), event.Overview, event.Search)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.local.Len())

	f.net.Set(false)
	_, err = f.repo.Warm(ctx())
	require.ErrorIs(t, err, huddle.ErrOfflineUnavailable)
}

func TestPingAndClose(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.repo.Ping(ctx()))
	require.NoError(t, f.repo.Close())
	require.ErrorIs(t, f.repo.Ping(ctx()), huddle.ErrStoreClosed)
}

func eventIDs(evts []*event.Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.ID.String()
	}
	return out
}
