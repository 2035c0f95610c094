// Package mongo is the authoritative event source, backed by a MongoDB
// collection. Documents are plain event records; participants is an array
// of user IDs, so membership queries use $all.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store"
)

// Collection name constants.
const colEvents = "huddle_events"

// Compile-time interface check.
var _ store.Remote = (*Store)(nil)

// Store implements store.Remote using MongoDB.
type Store struct {
	col      *mongo.Collection
	identity scope.Identity
	ping     func(context.Context) error
	close    func() error
}

// New creates a MongoDB source on a grove database. ident supplies the caller
// for ListEvents when the context carries none; it may be nil.
func New(db *grove.DB, ident scope.Identity) *Store {
	mdb := mongodriver.Unwrap(db)
	return &Store{
		col:      mdb.Collection(colEvents),
		identity: ident,
		ping:     db.Ping,
		close:    db.Close,
	}
}

// NewFromDatabase creates a MongoDB source directly on a driver database.
// Close disconnects the database's client.
func NewFromDatabase(db *mongo.Database, ident scope.Identity) *Store {
	client := db.Client()
	return &Store{
		col:      db.Collection(colEvents),
		identity: ident,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() error {
			return client.Disconnect(context.Background())
		},
	}
}

// Collection returns the underlying events collection.
func (s *Store) Collection() *mongo.Collection { return s.col }

// Migrate creates the collection indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.col.Indexes().CreateMany(ctx, migrationIndexes()); err != nil {
		return fmt.Errorf("%w: mongo: %s indexes: %w", huddle.ErrMigrationFailed, colEvents, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.close()
}

// ==================== event.Source ====================

// NewEventID generates a fresh event ID.
func (s *Store) NewEventID() id.ID { return id.NewEventID() }

// AddEvent inserts a new document.
func (s *Store) AddEvent(ctx context.Context, evt *event.Event) error {
	e := evt.Clone()
	e.EnsureOwner()

	if _, err := s.col.InsertOne(ctx, toEventModel(e)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", huddle.ErrDuplicateEvent, e.ID)
		}
		return fmt.Errorf("huddle/mongo: add event: %w", err)
	}
	return nil
}

// EditEvent replaces the whole document.
func (s *Store) EditEvent(ctx context.Context, evtID id.ID, evt *event.Event) error {
	e := evt.Clone()
	e.ID = evtID
	e.EnsureOwner()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": evtID.String()}, toEventModel(e))
	if err != nil {
		return fmt.Errorf("huddle/mongo: edit event: %w", err)
	}
	if res.MatchedCount == 0 {
		return huddle.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes a document.
func (s *Store) DeleteEvent(ctx context.Context, evtID id.ID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": evtID.String()})
	if err != nil {
		return fmt.Errorf("huddle/mongo: delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return huddle.ErrEventNotFound
	}
	return nil
}

// GetEvent returns one event. Documents that do not decode count as missing.
func (s *Store) GetEvent(ctx context.Context, evtID id.ID) (*event.Event, error) {
	res := s.col.FindOne(ctx, bson.M{"_id": evtID.String()})
	if err := res.Err(); err != nil {
		if isNoDocuments(err) {
			return nil, huddle.ErrEventNotFound
		}
		return nil, fmt.Errorf("huddle/mongo: get event: %w", err)
	}

	var m eventModel
	if err := res.Decode(&m); err != nil {
		return nil, huddle.ErrEventNotFound
	}
	e, err := fromEventModel(&m)
	if err != nil || !e.Readable() {
		return nil, huddle.ErrEventNotFound
	}
	return e, nil
}

// GetEvents fetches up to event.MaxBulkIDs events with one $in query.
func (s *Store) GetEvents(ctx context.Context, ids []id.ID) ([]*event.Event, error) {
	if len(ids) > event.MaxBulkIDs {
		return nil, fmt.Errorf("%w: %d > %d", huddle.ErrTooManyIDs, len(ids), event.MaxBulkIDs)
	}
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": id.Strings(ids)}}, nil)
}

// ListEvents runs the intent's server-side query for the caller. The map
// intent concatenates the participant and public queries.
func (s *Store) ListEvents(ctx context.Context, intent event.Intent) ([]*event.Event, error) {
	uid, ok := scope.Resolve(ctx, s.identity)
	if !ok {
		return nil, huddle.ErrUnauthenticated
	}

	joined := bson.M{"participants": bson.M{"$all": bson.A{uid}}}
	public := bson.M{"visibility": string(event.VisibilityPublic)}

	switch intent {
	case event.Overview, event.History:
		return s.find(ctx, joined, nil)
	case event.Search:
		return s.find(ctx, public, nil)
	case event.Map:
		mine, err := s.find(ctx, joined, nil)
		if err != nil {
			return nil, err
		}
		open, err := s.find(ctx, public, nil)
		if err != nil {
			return nil, err
		}
		return append(mine, open...), nil
	default:
		return nil, fmt.Errorf("%w: %q", huddle.ErrInvalidIntent, intent)
	}
}

// ListCommonEvents returns events whose participants include every user,
// oldest first.
func (s *Store) ListCommonEvents(ctx context.Context, userIDs []string) ([]*event.Event, error) {
	if len(userIDs) == 0 {
		return []*event.Event{}, nil
	}
	all := make(bson.A, len(userIDs))
	for i, u := range userIDs {
		all[i] = u
	}
	return s.find(ctx,
		bson.M{"participants": bson.M{"$all": all}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
}

// find decodes documents one at a time so a malformed record is skipped
// instead of failing the whole result.
func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*event.Event, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = s.col.Find(ctx, filter, opts)
	} else {
		cur, err = s.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("huddle/mongo: find: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*event.Event, 0)
	for cur.Next(ctx) {
		var m eventModel
		if err := cur.Decode(&m); err != nil {
			continue
		}
		e, err := fromEventModel(&m)
		if err != nil || !e.Readable() {
			continue
		}
		result = append(result, e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("huddle/mongo: cursor: %w", err)
	}
	return result, nil
}

// migrationIndexes returns the index definitions for the events collection.
func migrationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
