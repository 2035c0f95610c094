// Package sqlite is the on-device event cache, backed by SQLite through
// Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	huddlestore "github.com/xraph/huddle/store"
)

// compile-time interface check
var _ huddlestore.Local = (*Store)(nil)

// Store implements store.Local using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite cache backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the cache table using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("huddle/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: sqlite: %w", huddle.ErrMigrationFailed, err)
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

// ==================== event.LocalStore ====================

func (s *Store) GetCachedEvent(ctx context.Context, evtID id.ID) (*event.Event, error) {
	m := new(eventModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", evtID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, huddle.ErrEventNotCached
		}
		return nil, fmt.Errorf("huddle/sqlite: get cached event: %w", err)
	}
	return fromEventModel(m)
}

// ListCachedEvents returns the whole cache ordered by start date. Rows that
// no longer decode are skipped; the next mirror overwrites them.
func (s *Store) ListCachedEvents(ctx context.Context) ([]*event.Event, error) {
	var models []eventModel
	if err := s.sdb.NewSelect(&models).
		OrderExpr("date ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("huddle/sqlite: list cached events: %w", err)
	}

	result := make([]*event.Event, 0, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *Store) UpsertEvent(ctx context.Context, evt *event.Event) error {
	return s.UpsertEvents(ctx, []*event.Event{evt})
}

// UpsertEvents writes the batch in one statement. Re-mirroring an event
// replaces its row.
func (s *Store) UpsertEvents(ctx context.Context, evts []*event.Event) error {
	if len(evts) == 0 {
		return nil
	}
	t := now()
	models := make([]eventModel, 0, len(evts))
	seen := make(map[string]int, len(evts))
	for _, e := range evts {
		m := *toEventModel(e, t)
		// One statement cannot touch the same row twice.
		if i, dup := seen[m.ID]; dup {
			models[i] = m
			continue
		}
		seen[m.ID] = len(models)
		models = append(models, m)
	}

	_, err := s.sdb.NewInsert(&models).
		OnConflict("(id) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("location_lat = EXCLUDED.location_lat").
		Set("location_lng = EXCLUDED.location_lng").
		Set("location_name = EXCLUDED.location_name").
		Set("date = EXCLUDED.date").
		Set("duration = EXCLUDED.duration").
		Set("participants = EXCLUDED.participants").
		Set("max_participants = EXCLUDED.max_participants").
		Set("visibility = EXCLUDED.visibility").
		Set("owner_id = EXCLUDED.owner_id").
		Set("created_at = EXCLUDED.created_at").
		Set("updated_at = EXCLUDED.updated_at").
		Set("cached_at = EXCLUDED.cached_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("huddle/sqlite: upsert events: %w", err)
	}
	return nil
}

func (s *Store) DeleteCachedEvent(ctx context.Context, evtID id.ID) error {
	_, err := s.sdb.NewDelete((*eventModel)(nil)).
		Where("id = ?", evtID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("huddle/sqlite: delete cached event: %w", err)
	}
	return nil
}

// Prune evicts events that started before cutoff and returns how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.sdb.NewDelete((*eventModel)(nil)).
		Where("date < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("huddle/sqlite: prune: %w", err)
	}
	return res.RowsAffected()
}

func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
