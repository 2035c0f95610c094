// Package store defines the two persistence roles of Huddle.
//
// Local is the disposable on-device mirror; Remote is the authoritative
// source. Each composes the event package contract with lifecycle methods,
// and every backend under store/ implements one or the other.
package store

import (
	"context"

	"github.com/xraph/huddle/event"
)

// Lifecycle is shared by every backend.
type Lifecycle interface {
	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the backend connection.
	Close() error
}

// Local is the on-device cache.
type Local interface {
	event.LocalStore
	Lifecycle
}

// Remote is the authoritative event source.
type Remote interface {
	event.Source
	Lifecycle
}
