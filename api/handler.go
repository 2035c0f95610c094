// Package api exposes a Repository over HTTP.
//
// Handler is a plain net/http bridge used by the CLI's serve command and by
// integration tests; ForgeAPI registers the same operations on a Forge router
// with OpenAPI metadata. All routes are relative; mount them under a prefix
// (default: /huddle, see the extension package).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/scope"
)

// Handler is the root HTTP handler for the event API.
type Handler struct {
	repo   *huddle.Repository
	jwt    *scope.JWT
	logger *slog.Logger
	mux    *http.ServeMux
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithJWT enables bearer-token authentication. A valid token's subject
// becomes the calling user for that request. A missing or invalid token is
// rejected with 401 on every route except GET /status.
func WithJWT(j *scope.JWT) HandlerOption {
	return func(h *Handler) { h.jwt = j }
}

// NewHandler creates a new API handler.
func NewHandler(repo *huddle.Repository, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		repo:   repo,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	// Reads
	h.mux.HandleFunc("GET /events", h.listEvents)
	h.mux.HandleFunc("GET /events/common", h.commonEvents)
	h.mux.HandleFunc("GET /events/{eventId}", h.getEvent)
	h.mux.HandleFunc("POST /events/batch", h.getEvents)
	h.mux.HandleFunc("GET /events.ics", h.exportCalendar)

	// Writes
	h.mux.HandleFunc("POST /events", h.addEvent)
	h.mux.HandleFunc("PUT /events/{eventId}", h.editEvent)
	h.mux.HandleFunc("DELETE /events/{eventId}", h.deleteEvent)

	// Status
	h.mux.HandleFunc("GET /status", h.getStatus)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withMiddleware(h.mux).ServeHTTP(w, r)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.panicRecovery(h.logging(h.authenticate(next)))
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate puts the bearer token's subject into the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.jwt == nil {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := bearer(r)
		if !ok {
			if r.Method == http.MethodGet && r.URL.Path == "/status" {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		uid, err := h.jwt.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r.WithContext(scope.WithUser(r.Context(), uid)))
	})
}

func bearer(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSON helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryParam returns a query parameter value, or empty string if not present.
func queryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}
