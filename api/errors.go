package api

import (
	"errors"
	"net/http"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/scope"
)

// statusFor maps huddle sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, huddle.ErrOfflineUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, huddle.ErrEventNotFound),
		errors.Is(err, huddle.ErrEventNotCached):
		return http.StatusNotFound
	case errors.Is(err, huddle.ErrUnauthenticated),
		errors.Is(err, scope.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, huddle.ErrInvalidEvent),
		errors.Is(err, huddle.ErrInvalidIntent),
		errors.Is(err, huddle.ErrTooManyIDs),
		errors.Is(err, huddle.ErrOwnerImmutable):
		return http.StatusBadRequest
	case errors.Is(err, huddle.ErrDuplicateEvent):
		return http.StatusConflict
	case errors.Is(err, huddle.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
