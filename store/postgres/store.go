// Package postgres is the authoritative event source, backed by PostgreSQL
// through Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/scope"
	huddlestore "github.com/xraph/huddle/store"
)

// compile-time interface check
var _ huddlestore.Remote = (*Store)(nil)

// Store implements store.Remote using PostgreSQL via Grove ORM.
type Store struct {
	db       *grove.DB
	pg       *pgdriver.PgDB
	identity scope.Identity
}

// New creates a new PostgreSQL source backed by Grove ORM. ident supplies
// the caller for ListEvents when the context carries none; it may be nil.
func New(db *grove.DB, ident scope.Identity) *Store {
	return &Store{
		db:       db,
		pg:       pgdriver.Unwrap(db),
		identity: ident,
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("huddle/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %w", huddle.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== event.Source ====================

func (s *Store) NewEventID() id.ID { return id.NewEventID() }

func (s *Store) AddEvent(ctx context.Context, evt *event.Event) error {
	e := evt.Clone()
	e.EnsureOwner()
	res, err := s.pg.NewInsert(toEventModel(e)).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("huddle/postgres: add event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", huddle.ErrDuplicateEvent, e.ID)
	}
	return nil
}

func (s *Store) EditEvent(ctx context.Context, evtID id.ID, evt *event.Event) error {
	e := evt.Clone()
	e.ID = evtID
	e.EnsureOwner()
	res, err := s.pg.NewUpdate(toEventModel(e)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("huddle/postgres: edit event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return huddle.ErrEventNotFound
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, evtID id.ID) error {
	res, err := s.pg.NewDelete((*eventModel)(nil)).
		Where("id = $1", evtID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("huddle/postgres: delete event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return huddle.ErrEventNotFound
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, evtID id.ID) (*event.Event, error) {
	m := new(eventModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", evtID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, huddle.ErrEventNotFound
		}
		return nil, fmt.Errorf("huddle/postgres: get event: %w", err)
	}
	e, err := fromEventModel(m)
	if err != nil || !e.Readable() {
		return nil, huddle.ErrEventNotFound
	}
	return e, nil
}

func (s *Store) GetEvents(ctx context.Context, ids []id.ID) ([]*event.Event, error) {
	if len(ids) > event.MaxBulkIDs {
		return nil, fmt.Errorf("%w: %d > %d", huddle.ErrTooManyIDs, len(ids), event.MaxBulkIDs)
	}
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	var models []eventModel
	if err := s.pg.NewSelect(&models).
		Where("id = ANY($1)", id.Strings(ids)).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("huddle/postgres: get events: %w", err)
	}
	return fromEventModels(models), nil
}

// ListEvents runs the intent's server-side query. The map intent is the
// concatenation of the participant and public queries and may repeat rows.
func (s *Store) ListEvents(ctx context.Context, intent event.Intent) ([]*event.Event, error) {
	uid, ok := scope.Resolve(ctx, s.identity)
	if !ok {
		return nil, huddle.ErrUnauthenticated
	}

	switch intent {
	case event.Overview, event.History:
		return s.withParticipants(ctx, []string{uid}, false)
	case event.Search:
		return s.public(ctx)
	case event.Map:
		joined, err := s.withParticipants(ctx, []string{uid}, false)
		if err != nil {
			return nil, err
		}
		public, err := s.public(ctx)
		if err != nil {
			return nil, err
		}
		return append(joined, public...), nil
	default:
		return nil, fmt.Errorf("%w: %q", huddle.ErrInvalidIntent, intent)
	}
}

func (s *Store) ListCommonEvents(ctx context.Context, userIDs []string) ([]*event.Event, error) {
	if len(userIDs) == 0 {
		return []*event.Event{}, nil
	}
	return s.withParticipants(ctx, userIDs, true)
}

// withParticipants selects events whose participant array contains every
// user in uids.
func (s *Store) withParticipants(ctx context.Context, uids []string, sorted bool) ([]*event.Event, error) {
	contains, err := json.Marshal(uids)
	if err != nil {
		return nil, err
	}
	var models []eventModel
	q := s.pg.NewSelect(&models).
		Where("participants @> $1::jsonb", string(contains))
	if sorted {
		q = q.OrderExpr("date ASC")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("huddle/postgres: list by participants: %w", err)
	}
	return fromEventModels(models), nil
}

func (s *Store) public(ctx context.Context) ([]*event.Event, error) {
	var models []eventModel
	if err := s.pg.NewSelect(&models).
		Where("visibility = $1", string(event.VisibilityPublic)).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("huddle/postgres: list public: %w", err)
	}
	return fromEventModels(models), nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
