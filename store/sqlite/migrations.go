package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the on-device event cache.
var Migrations = migrate.NewGroup("huddle_cache")

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
    location_lat     REAL NOT NULL DEFAULT 0,
    location_lng     REAL NOT NULL DEFAULT 0,
    location_name    TEXT NOT NULL DEFAULT '',
    date             TEXT NOT NULL,
    duration         INTEGER NOT NULL DEFAULT 0,
    participants     TEXT NOT NULL DEFAULT '[]',
    max_participants INTEGER NOT NULL DEFAULT 0,
    visibility       TEXT NOT NULL DEFAULT 'PRIVATE',
    owner_id         TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now')),
    cached_at        TEXT NOT NULL DEFAULT (datetime('now'))
);

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
