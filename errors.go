package huddle

import "errors"

// Sentinel errors returned by Huddle operations and store backends.
var (
	// ErrNoLocalStore is returned when a Repository is created without a local store.
	ErrNoLocalStore = errors.New("huddle: local store is required")

	// ErrNoRemoteSource is returned when a Repository is created without a remote source.
	ErrNoRemoteSource = errors.New("huddle: remote source is required")

	// ErrNoNetwork is returned when a Repository is created without a network observer.
	ErrNoNetwork = errors.New("huddle: network observer is required")

	// ErrOfflineUnavailable is returned when an operation needs connectivity
	// and there is none, or needs a cached copy that does not exist.
	ErrOfflineUnavailable = errors.New("huddle: unavailable offline")

	// ErrEventNotFound is returned when the remote source confirms an event does not exist.
	ErrEventNotFound = errors.New("huddle: event not found")

	// ErrDuplicateEvent is returned when adding an event whose ID already exists.
	ErrDuplicateEvent = errors.New("huddle: event already exists")

	// ErrEventNotCached is returned by local stores on a cache miss.
	ErrEventNotCached = errors.New("huddle: event not cached")

	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = errors.New("huddle: no authenticated user")

	// ErrTooManyIDs is returned when a bulk fetch exceeds event.MaxBulkIDs.
	ErrTooManyIDs = errors.New("huddle: too many ids in bulk query")

	// ErrInvalidIntent is returned for an unknown filter intent.
	ErrInvalidIntent = errors.New("huddle: invalid intent")

	// ErrRateLimited is returned when a remote read is throttled. Reads that
	// hit it are served from the cache like any other remote failure.
	ErrRateLimited = errors.New("huddle: remote rate limit exceeded")

	// ErrInvalidEvent is returned when an event fails validation before a write.
	ErrInvalidEvent = errors.New("huddle: invalid event")

	// ErrOwnerImmutable is returned when an edit tries to change the owner.
	ErrOwnerImmutable = errors.New("huddle: owner cannot change")

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("huddle: store is closed")

	// ErrMigrationFailed is returned when a database migration fails.
	ErrMigrationFailed = errors.New("huddle: migration failed")
)
