package api

import (
	"net/http"

	"github.com/xraph/huddle/calendar"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

// intentParam parses ?intent=, defaulting to overview.
func intentParam(r *http.Request) (event.Intent, error) {
	raw := queryParam(r, "intent")
	if raw == "" {
		return event.Overview, nil
	}
	return event.ParseIntent(raw)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	intent, err := intentParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.repo.ListEvents(r.Context(), intent)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	evtID, err := id.ParseEventID(r.PathValue("eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}

	evt, err := h.repo.GetEvent(r.Context(), evtID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evt)
}

func (h *Handler) getEvents(w http.ResponseWriter, r *http.Request) {
	var req GetEventsForgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ids, err := id.ParseEventIDs(req.IDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.repo.GetEvents(r.Context(), ids)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) commonEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.CommonEvents(r.Context(), r.URL.Query()["user"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) exportCalendar(w http.ResponseWriter, r *http.Request) {
	intent, err := intentParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.repo.ListEvents(r.Context(), intent)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := calendar.Export(events, calendar.Options{Name: "Huddle " + string(intent)})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // best effort
}

func (h *Handler) addEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventForgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	evt, err := h.repo.AddEvent(r.Context(), req.Event())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, evt)
}

func (h *Handler) editEvent(w http.ResponseWriter, r *http.Request) {
	evtID, err := id.ParseEventID(r.PathValue("eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}
	var req CreateEventForgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	evt, err := h.repo.EditEvent(r.Context(), evtID, req.Event())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evt)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	evtID, err := id.ParseEventID(r.PathValue("eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}

	if err := h.repo.DeleteEvent(r.Context(), evtID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	cached, err := h.repo.CachedEvents(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusForgeResponse{
		Online:       h.repo.Online(),
		CachedEvents: len(cached),
	})
}

// fail writes the status for err. Unexpected errors are logged and their
// text withheld from the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "api request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
