// Package redis is an event cache backed by Redis. Each event is a JSON blob
// and a sorted set indexes the blobs by start time.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/grove/kv"
	"github.com/xraph/grove/kv/drivers/redisdriver"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	huddlestore "github.com/xraph/huddle/store"
)

// compile-time interface check
var _ huddlestore.Local = (*Store)(nil)

// Store implements store.Local using Redis.
type Store struct {
	kv  *kv.Store
	rdb goredis.UniversalClient
}

// New creates a new Redis cache backed by Grove KV.
func New(store *kv.Store) *Store {
	return &Store{
		kv:  store,
		rdb: redisdriver.UnwrapClient(store),
	}
}

// NewFromClient creates a Redis cache on an existing client. Close closes
// the client.
func NewFromClient(rdb goredis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// Migrate is a no-op for Redis (no schema migrations needed).
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.kv != nil {
		return s.kv.Ping(ctx)
	}
	return s.rdb.Ping(ctx).Err()
}

// Close closes the connection.
func (s *Store) Close() error {
	if s.kv != nil {
		return s.kv.Close()
	}
	return s.rdb.Close()
}

// ==================== event.LocalStore ====================

func (s *Store) GetCachedEvent(ctx context.Context, evtID id.ID) (*event.Event, error) {
	raw, err := s.rdb.Get(ctx, entityKey(prefixEvent, evtID.String())).Bytes()
	if err != nil {
		if isRedisNil(err) {
			return nil, huddle.ErrEventNotCached
		}
		return nil, fmt.Errorf("huddle/redis: get cached event: %w", err)
	}
	e, err := decode(raw)
	if err != nil {
		return nil, huddle.ErrEventNotCached
	}
	return e, nil
}

// ListCachedEvents walks the date index and loads every blob in one MGET.
// Index entries whose blob is gone or undecodable are skipped.
func (s *Store) ListCachedEvents(ctx context.Context) ([]*event.Event, error) {
	ids, err := s.rdb.ZRange(ctx, zEventDate, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("huddle/redis: list cached events: %w", err)
	}
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}

	keys := make([]string, len(ids))
	for i, evtID := range ids {
		keys[i] = entityKey(prefixEvent, evtID)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("huddle/redis: load cached events: %w", err)
	}

	result := make([]*event.Event, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		e, err := decode([]byte(str))
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

// UpsertEvents writes blobs and index entries in one MULTI/EXEC.
func (s *Store) UpsertEvents(ctx context.Context, evts []*event.Event) error {
	if len(evts) == 0 {
		return nil
	}
	t := now()
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, e := range evts {
			raw, err := json.Marshal(toEventModel(e, t))
			if err != nil {
				return fmt.Errorf("huddle/redis: marshal event: %w", err)
			}
			key := e.ID.String()
			pipe.Set(ctx, entityKey(prefixEvent, key), raw, 0)
			pipe.ZAdd(ctx, zEventDate, goredis.Z{Score: scoreFromTime(e.Date), Member: key})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("huddle/redis: upsert events: %w", err)
	}
	return nil
}

func (s *Store) DeleteCachedEvent(ctx context.Context, evtID id.ID) error {
	key := evtID.String()
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, entityKey(prefixEvent, key))
		pipe.ZRem(ctx, zEventDate, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("huddle/redis: delete cached event: %w", err)
	}
	return nil
}

func decode(raw []byte) (*event.Event, error) {
	var m eventModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return fromEventModel(&m)
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// scoreFromTime converts a time.Time to a sorted set score (unix seconds as float64).
func scoreFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// isRedisNil checks if an error is a Redis nil (key not found).
func isRedisNil(err error) bool {
	return errors.Is(err, goredis.Nil)
}
