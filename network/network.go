// Package network reports whether the remote source is reachable.
package network

import "sync/atomic"

// Observer answers "are we online right now". IsOnline must be synchronous,
// side-effect free and cheap enough to call before every operation.
type Observer interface {
	IsOnline() bool
}

// Func adapts a plain function to Observer.
type Func func() bool

// IsOnline implements Observer.
func (f Func) IsOnline() bool { return f() }

// Always is an Observer that is always online.
var Always Observer = Func(func() bool { return true })

// Never is an Observer that is always offline.
var Never Observer = Func(func() bool { return false })

// Toggle is a manually switched Observer.
type Toggle struct {
	online atomic.Bool
}

// NewToggle returns a Toggle in the given state.
func NewToggle(online bool) *Toggle {
	t := &Toggle{}
	t.online.Store(online)
	return t
}

// Set switches the state.
func (t *Toggle) Set(online bool) { t.online.Store(online) }

// IsOnline implements Observer.
func (t *Toggle) IsOnline() bool { return t.online.Load() }
