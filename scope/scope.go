// Package scope resolves the authenticated user a call runs on behalf of.
//
// A user can travel in the context (set by the HTTP bridge per request) or
// come from an Identity injected at construction (the signed-in device user).
// The context wins when both are present.
package scope

import (
	"context"
	"sync"
)

// Identity reports the current user ID, or false when nobody is signed in.
// It must be cheap and synchronous.
type Identity interface {
	UserID() (string, bool)
}

// Fixed is an Identity that always reports the same user. The empty Fixed
// reports nobody.
type Fixed string

// UserID implements Identity.
func (f Fixed) UserID() (string, bool) { return string(f), f != "" }

// Anonymous never reports a user.
var Anonymous Identity = Fixed("")

// Session is a mutable Identity for a device that signs in and out.
type Session struct {
	mu  sync.RWMutex
	uid string
}

// NewSession returns a signed-out session.
func NewSession() *Session { return &Session{} }

// SignIn sets the current user.
func (s *Session) SignIn(uid string) {
	s.mu.Lock()
	s.uid = uid
	s.mu.Unlock()
}

// SignOut clears the current user.
func (s *Session) SignOut() { s.SignIn("") }

// UserID implements Identity.
func (s *Session) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid, s.uid != ""
}

type userKey struct{}

// WithUser returns a context carrying uid. An empty uid leaves ctx unchanged.
func WithUser(ctx context.Context, uid string) context.Context {
	if uid == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, uid)
}

// Capture extracts the user placed in ctx by WithUser.
func Capture(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userKey{}).(string)
	return uid, ok && uid != ""
}

// Resolve returns the user from ctx, falling back to ident. ident may be nil.
func Resolve(ctx context.Context, ident Identity) (string, bool) {
	if uid, ok := Capture(ctx); ok {
		return uid, true
	}
	if ident == nil {
		return "", false
	}
	return ident.UserID()
}
