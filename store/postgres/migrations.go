package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the authoritative event store.
// It can be registered with the grove extension for orchestrated migration
// management (locking, version tracking, rollback support).
var Migrations = migrate.NewGroup("huddle")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_huddle_events",
			Version: "20260301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS huddle_events (
    id               TEXT PRIMARY KEY,
    kind             TEXT NOT NULL DEFAULT '',
    title            TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    location_lat     DOUBLE PRECISION NOT NULL DEFAULT 0,
    location_lng     DOUBLE PRECISION NOT NULL DEFAULT 0,
    location_name    TEXT NOT NULL DEFAULT '',
    date             TIMESTAMPTZ,
    duration         INTEGER NOT NULL DEFAULT 0,
    participants     JSONB NOT NULL DEFAULT '[]',
    max_participants INTEGER NOT NULL DEFAULT 0,
    visibility       TEXT NOT NULL DEFAULT 'PRIVATE',
    owner_id         TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_huddle_events_participants ON huddle_events USING GIN (participants);
CREATE INDEX IF NOT EXISTS idx_huddle_events_visibility ON huddle_events (visibility);
CREATE INDEX IF NOT EXISTS idx_huddle_events_date ON huddle_events (date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS huddle_events`)
				return err
			},
		},
	)
}
