package huddle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/network"
	"github.com/xraph/huddle/notify"
	"github.com/xraph/huddle/observability"
	"github.com/xraph/huddle/ratelimit"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store"
)

const remoteKey = "remote"

// Repository serves events from the remote source when online and from the
// local cache when offline, through one API. Successful remote reads are
// mirrored into the cache. Writes go to the remote only.
type Repository struct {
	config    Config
	local     store.Local
	remote    store.Remote
	network   network.Observer
	identity  scope.Identity
	scheduler notify.Scheduler
	validator *event.Validator
	limiter   *ratelimit.Limiter
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Repository. WithLocal, WithRemote and WithNetwork are required.
func New(opts ...Option) (*Repository, error) {
	r := &Repository{
		config:  DefaultConfig(),
		limiter: ratelimit.New(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	switch {
	case r.local == nil:
		return nil, ErrNoLocalStore
	case r.remote == nil:
		return nil, ErrNoRemoteSource
	case r.network == nil:
		return nil, ErrNoNetwork
	}
	if r.validator == nil {
		v, err := event.NewValidator()
		if err != nil {
			return nil, fmt.Errorf("huddle: build validator: %w", err)
		}
		r.validator = v
	}
	return r, nil
}

// Local returns the cache backend.
func (r *Repository) Local() store.Local { return r.local }

// Remote returns the remote backend.
func (r *Repository) Remote() store.Remote { return r.remote }

// Config returns the active configuration.
func (r *Repository) Config() Config { return r.config }

// Online reports the current connectivity as seen by the observer.
func (r *Repository) Online() bool { return r.network.IsOnline() }

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// ListEvents returns the events matching intent for the calling user.
//
// Online, the remote result is mirrored into the cache and then filtered.
// If the remote call fails, or the device is offline, the cache is scanned
// and filtered with the same predicate. Offline without a signed-in user
// the result is empty rather than an error.
func (r *Repository) ListEvents(ctx context.Context, intent event.Intent) ([]*event.Event, error) {
	if !intent.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIntent, intent)
	}
	online := r.network.IsOnline()
	ctx, span := r.tracer.StartOp(ctx, "list_events", online, attribute.String("huddle.intent", string(intent)))

	if online {
		evts, err := callRemote(ctx, r, "list_events", false, func(ctx context.Context) ([]*event.Event, error) {
			return r.remote.ListEvents(ctx, intent)
		})
		if err == nil {
			r.mirror(ctx, evts)
			uid, _ := r.caller(ctx)
			out := event.Filter(evts, intent, uid, r.now())
			r.tracer.EndOp(span, "remote", len(out), nil)
			return out, nil
		}
		r.fallback(ctx, "list_events", err, "intent", intent)
	} else {
		r.metrics.RecordOfflineRead("list_events")
	}

	out, err := r.scanCache(ctx, func(all []*event.Event, uid string) []*event.Event {
		return event.Filter(all, intent, uid, r.now())
	})
	r.tracer.EndOp(span, "cache", len(out), err)
	return out, err
}

// GetEvent returns one event.
//
// Online, a remote failure falls back to the cached copy when there is one;
// without a cached copy the remote error is returned unchanged. Offline, a
// cache miss is ErrOfflineUnavailable.
func (r *Repository) GetEvent(ctx context.Context, evtID id.ID) (*event.Event, error) {
	online := r.network.IsOnline()
	ctx, span := r.tracer.StartOp(ctx, "get_event", online, attribute.String("huddle.event_id", evtID.String()))

	if online {
		evt, err := callRemote(ctx, r, "get_event", false, func(ctx context.Context) (*event.Event, error) {
			return r.remote.GetEvent(ctx, evtID)
		})
		if err == nil {
			r.mirror(ctx, []*event.Event{evt})
			r.tracer.EndOp(span, "remote", 1, nil)
			return evt, nil
		}
		cached, cerr := r.local.GetCachedEvent(ctx, evtID)
		if cerr != nil {
			r.tracer.EndOp(span, "remote", 0, err)
			return nil, err
		}
		r.fallback(ctx, "get_event", err, "event_id", evtID)
		r.tracer.EndOp(span, "cache", 1, nil)
		return cached, nil
	}

	r.metrics.RecordOfflineRead("get_event")
	cached, err := r.local.GetCachedEvent(ctx, evtID)
	switch {
	case errors.Is(err, ErrEventNotCached):
		err = ErrOfflineUnavailable
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrOfflineUnavailable, err)
	}
	r.tracer.EndOp(span, "cache", 1, err)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// GetEvents returns the events with the given IDs, in request order. IDs the
// source does not know, or whose records are unreadable, are skipped. Large
// sets are fetched in batches of event.MaxBulkIDs.
func (r *Repository) GetEvents(ctx context.Context, ids []id.ID) ([]*event.Event, error) {
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	online := r.network.IsOnline()
	ctx, span := r.tracer.StartOp(ctx, "get_events", online, attribute.Int("huddle.ids", len(ids)))

	if online {
		evts, err := callRemote(ctx, r, "get_events", false, func(ctx context.Context) ([]*event.Event, error) {
			return r.fetchBatches(ctx, ids)
		})
		if err == nil {
			r.mirror(ctx, evts)
			out := inOrder(evts, ids)
			r.tracer.EndOp(span, "remote", len(out), nil)
			return out, nil
		}
		r.fallback(ctx, "get_events", err, "ids", len(ids))
	} else {
		r.metrics.RecordOfflineRead("get_events")
	}

	out, err := r.scanCache(ctx, func(all []*event.Event, _ string) []*event.Event {
		return inOrder(all, ids)
	})
	r.tracer.EndOp(span, "cache", len(out), err)
	return out, err
}

// CommonEvents returns events every user in userIDs participates in, oldest
// first. No users means no events.
func (r *Repository) CommonEvents(ctx context.Context, userIDs []string) ([]*event.Event, error) {
	if len(userIDs) == 0 {
		return []*event.Event{}, nil
	}
	online := r.network.IsOnline()
	ctx, span := r.tracer.StartOp(ctx, "common_events", online, attribute.Int("huddle.users", len(userIDs)))

	if online {
		evts, err := callRemote(ctx, r, "common_events", false, func(ctx context.Context) ([]*event.Event, error) {
			return r.remote.ListCommonEvents(ctx, userIDs)
		})
		if err == nil {
			r.mirror(ctx, evts)
			out := event.Common(evts, userIDs)
			r.tracer.EndOp(span, "remote", len(out), nil)
			return out, nil
		}
		r.fallback(ctx, "common_events", err, "users", len(userIDs))
	} else {
		r.metrics.RecordOfflineRead("common_events")
	}

	out, err := r.scanCache(ctx, func(all []*event.Event, _ string) []*event.Event {
		return event.Common(all, userIDs)
	})
	r.tracer.EndOp(span, "cache", len(out), err)
	return out, err
}

// CachedEvents returns the raw cache contents.
func (r *Repository) CachedEvents(ctx context.Context) ([]*event.Event, error) {
	return r.local.ListCachedEvents(ctx)
}

// Warm refreshes the cache from the remote for each intent (all intents when
// none are given) and returns how many events were mirrored.
func (r *Repository) Warm(ctx context.Context, intents ...event.Intent) (int, error) {
	if !r.network.IsOnline() {
		return 0, ErrOfflineUnavailable
	}
	if len(intents) == 0 {
		intents = event.Intents
	}

	var (
		total int
		errs  []error
	)
	for _, intent := range intents {
		evts, err := callRemote(ctx, r, "warm", true, func(ctx context.Context) ([]*event.Event, error) {
			return r.remote.ListEvents(ctx, intent)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", intent, err))
			continue
		}
		if err := r.local.UpsertEvents(ctx, evts); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: mirror: %w", intent, err))
			continue
		}
		r.metrics.RecordMirror(len(evts))
		total += len(evts)
	}
	return total, errors.Join(errs...)
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

// AddEvent creates evt on the remote and mirrors it. The owner defaults to
// the calling user and is always added to the participants. A reminder is
// scheduled when the stored event is upcoming. The returned event is the one
// that was persisted; evt itself is not modified.
func (r *Repository) AddEvent(ctx context.Context, evt *event.Event) (*event.Event, error) {
	if evt == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if !r.network.IsOnline() {
		return nil, ErrOfflineUnavailable
	}
	ctx, span := r.tracer.StartOp(ctx, "add_event", true)

	e := evt.Clone()
	if e.OwnerID == "" {
		uid, ok := r.caller(ctx)
		if !ok {
			r.tracer.EndOp(span, "remote", 0, ErrUnauthenticated)
			return nil, ErrUnauthenticated
		}
		e.OwnerID = uid
	}
	if e.ID.IsNil() {
		e.ID = r.remote.NewEventID()
	}
	e.EnsureOwner()
	e.Touch(r.now())

	if err := r.validate(e); err != nil {
		r.tracer.EndOp(span, "remote", 0, err)
		return nil, err
	}

	_, err := callRemote(ctx, r, "add_event", true, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.remote.AddEvent(ctx, e)
	})
	if err != nil {
		r.metrics.RecordWrite("add_event", "error")
		r.tracer.EndOp(span, "remote", 0, err)
		return nil, err
	}
	r.metrics.RecordWrite("add_event", "ok")

	r.mirrorWrite(ctx, e)
	if e.State(r.now()) == event.Upcoming {
		r.schedule(ctx, e)
	}
	r.tracer.EndOp(span, "remote", 1, nil)
	return e, nil
}

// EditEvent fully replaces the event stored under evtID. The existing
// reminder is always cancelled first and rescheduled only when the new
// version is upcoming.
func (r *Repository) EditEvent(ctx context.Context, evtID id.ID, evt *event.Event) (*event.Event, error) {
	if evt == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if !r.network.IsOnline() {
		return nil, ErrOfflineUnavailable
	}
	ctx, span := r.tracer.StartOp(ctx, "edit_event", true, attribute.String("huddle.event_id", evtID.String()))

	e := evt.Clone()
	e.ID = evtID
	if err := r.resolveOwner(ctx, e); err != nil {
		r.tracer.EndOp(span, "remote", 0, err)
		return nil, err
	}
	e.EnsureOwner()
	e.Touch(r.now())

	if err := r.validate(e); err != nil {
		r.tracer.EndOp(span, "remote", 0, err)
		return nil, err
	}

	_, err := callRemote(ctx, r, "edit_event", true, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.remote.EditEvent(ctx, evtID, e)
	})
	if err != nil {
		r.metrics.RecordWrite("edit_event", "error")
		r.tracer.EndOp(span, "remote", 0, err)
		return nil, err
	}
	r.metrics.RecordWrite("edit_event", "ok")

	r.mirrorWrite(ctx, e)
	r.cancel(ctx, evtID)
	if e.State(r.now()) == event.Upcoming {
		r.schedule(ctx, e)
	}
	r.tracer.EndOp(span, "remote", 1, nil)
	return e, nil
}

// DeleteEvent removes the event from the remote, evicts it from the cache
// and cancels its reminder whatever its lifecycle state.
func (r *Repository) DeleteEvent(ctx context.Context, evtID id.ID) error {
	if !r.network.IsOnline() {
		return ErrOfflineUnavailable
	}
	ctx, span := r.tracer.StartOp(ctx, "delete_event", true, attribute.String("huddle.event_id", evtID.String()))

	_, err := callRemote(ctx, r, "delete_event", true, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.remote.DeleteEvent(ctx, evtID)
	})
	if err != nil {
		r.metrics.RecordWrite("delete_event", "error")
		r.tracer.EndOp(span, "remote", 0, err)
		return err
	}
	r.metrics.RecordWrite("delete_event", "ok")

	if err := r.local.DeleteCachedEvent(context.WithoutCancel(ctx), evtID); err != nil {
		r.logger.WarnContext(ctx, "cache eviction failed", "event_id", evtID, "error", err)
	}
	r.cancel(ctx, evtID)
	r.tracer.EndOp(span, "remote", 1, nil)
	return nil
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping checks both backends.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.local.Ping(ctx); err != nil {
		return fmt.Errorf("huddle: ping local: %w", err)
	}
	if err := r.remote.Ping(ctx); err != nil {
		return fmt.Errorf("huddle: ping remote: %w", err)
	}
	return nil
}

// Close closes both backends.
func (r *Repository) Close() error {
	return errors.Join(r.local.Close(), r.remote.Close())
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

func (r *Repository) caller(ctx context.Context) (string, bool) {
	return scope.Resolve(ctx, r.identity)
}

func (r *Repository) validate(e *event.Event) error {
	if err := r.validator.Validate(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

// resolveOwner fills an empty owner from the stored event and rejects an
// owner that differs from it. The cached copy is consulted first; on a miss
// the remote copy is read, since edits only run online.
func (r *Repository) resolveOwner(ctx context.Context, e *event.Event) error {
	stored, err := r.local.GetCachedEvent(ctx, e.ID)
	if err != nil {
		stored, err = callRemote(ctx, r, "get_event", true, func(ctx context.Context) (*event.Event, error) {
			return r.remote.GetEvent(ctx, e.ID)
		})
		if err != nil {
			return err
		}
	}
	switch {
	case e.OwnerID == "":
		e.OwnerID = stored.OwnerID
	case e.OwnerID != stored.OwnerID:
		return ErrOwnerImmutable
	}
	if e.OwnerID == "" {
		uid, ok := r.caller(ctx)
		if !ok {
			return ErrUnauthenticated
		}
		e.OwnerID = uid
	}
	return nil
}

// scanCache reads the whole cache and hands it to pick. Without a signed-in
// user the result is empty.
func (r *Repository) scanCache(ctx context.Context, pick func(all []*event.Event, uid string) []*event.Event) ([]*event.Event, error) {
	uid, ok := r.caller(ctx)
	if !ok {
		return []*event.Event{}, nil
	}
	all, err := r.local.ListCachedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("huddle: scan cache: %w", err)
	}
	return pick(all, uid), nil
}

// mirror copies a remote read result into the cache. A cancelled read does
// not mirror. Failures are logged only.
func (r *Repository) mirror(ctx context.Context, evts []*event.Event) {
	if len(evts) == 0 || ctx.Err() != nil {
		return
	}
	if err := r.local.UpsertEvents(ctx, evts); err != nil {
		r.logger.WarnContext(ctx, "cache mirror failed", "events", len(evts), "error", err)
		return
	}
	r.metrics.RecordMirror(len(evts))
}

// mirrorWrite copies a successful write into the cache even if ctx was
// cancelled after the remote accepted it.
func (r *Repository) mirrorWrite(ctx context.Context, e *event.Event) {
	if err := r.local.UpsertEvent(context.WithoutCancel(ctx), e); err != nil {
		r.logger.WarnContext(ctx, "cache mirror failed", "event_id", e.ID, "error", err)
		return
	}
	r.metrics.RecordMirror(1)
}

func (r *Repository) fallback(ctx context.Context, op string, err error, args ...any) {
	r.metrics.RecordFallback(op)
	r.logger.WarnContext(ctx, "remote read failed, serving cache",
		append([]any{"op", op, "error", err}, args...)...)
}

// schedule and cancel follow a write the remote already accepted, so they
// run detached from the caller's cancellation like mirrorWrite.
func (r *Repository) schedule(ctx context.Context, e *event.Event) {
	if r.scheduler == nil {
		return
	}
	err := r.scheduler.Schedule(context.WithoutCancel(ctx), e)
	r.metrics.RecordReminder("schedule", err)
	if err != nil {
		r.logger.WarnContext(ctx, "schedule reminder failed", "event_id", e.ID, "error", err)
	}
}

func (r *Repository) cancel(ctx context.Context, evtID id.ID) {
	if r.scheduler == nil {
		return
	}
	err := r.scheduler.Cancel(context.WithoutCancel(ctx), evtID)
	r.metrics.RecordReminder("cancel", err)
	if err != nil {
		r.logger.WarnContext(ctx, "cancel reminder failed", "event_id", evtID, "error", err)
	}
}

// fetchBatches splits ids into chunks the source accepts.
func (r *Repository) fetchBatches(ctx context.Context, ids []id.ID) ([]*event.Event, error) {
	out := make([]*event.Event, 0, len(ids))
	for start := 0; start < len(ids); start += event.MaxBulkIDs {
		end := min(start+event.MaxBulkIDs, len(ids))
		evts, err := r.remote.GetEvents(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, evts...)
	}
	return out, nil
}

// callRemote applies the rate limit and timeout to one remote call. Reads
// fail fast with ErrRateLimited; writes wait for a token.
func callRemote[T any](ctx context.Context, r *Repository, op string, wait bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if wait {
		if err := r.limiter.Wait(ctx, remoteKey, r.config.RemoteRateLimit); err != nil {
			return zero, err
		}
	} else if !r.limiter.Allow(remoteKey, r.config.RemoteRateLimit) {
		return zero, ErrRateLimited
	}

	if r.config.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RemoteTimeout)
		defer cancel()
	}

	start := time.Now()
	v, err := fn(ctx)
	r.metrics.RecordRemoteCall(op, err == nil, time.Since(start).Seconds())
	return v, err
}

// inOrder picks the events named by ids from evts, in ids order, once each.
func inOrder(evts []*event.Event, ids []id.ID) []*event.Event {
	byID := make(map[id.ID]*event.Event, len(evts))
	for _, e := range evts {
		if _, ok := byID[e.ID]; !ok {
			byID[e.ID] = e
		}
	}
	out := make([]*event.Event, 0, len(ids))
	seen := make(map[id.ID]struct{}, len(ids))
	for _, evtID := range ids {
		if _, dup := seen[evtID]; dup {
			continue
		}
		seen[evtID] = struct{}{}
		if e, ok := byID[evtID]; ok {
			out = append(out, e)
		}
	}
	return out
}
