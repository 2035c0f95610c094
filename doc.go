// Package huddle provides an offline-first event cache for Go.
//
// Huddle is a library, not a service. A Repository answers event queries the
// same way whether the device is online or offline: online it reads the
// authoritative remote source and mirrors the result into a local cache,
// offline it scans that cache and applies the same intent filter. Writes
// always go to the remote and fail fast with ErrOfflineUnavailable when there
// is no connectivity. Successful writes drive local reminders through a
// notify.Scheduler based on the event's lifecycle state.
//
// Key features:
//   - One filter implementation for online and offline reads
//   - Pluggable backends: SQLite, Redis or memory for the cache; MongoDB,
//     Postgres or memory for the remote source
//   - Cache fallback on any remote read failure, including rate limiting
//   - Reminder scheduling in-process or over NATS JetStream
//   - ICS export, scheduled cache warming and an HTTP bridge
//
// Quick start:
//
//	repo, err := huddle.New(
//	    huddle.WithLocal(sqliteStore),
//	    huddle.WithRemote(mongoStore),
//	    huddle.WithNetwork(monitor),
//	    huddle.WithIdentity(session),
//	    huddle.WithScheduler(notify.NewTimer(sink)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	upcoming, err := repo.ListEvents(ctx, event.Overview)
package huddle
