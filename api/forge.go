package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

// ForgeAPI wires the event routes into a Forge router. The calling user is
// whatever scope.WithUser put into the request context upstream, falling
// back to the repository's identity.
type ForgeAPI struct {
	repo *huddle.Repository
	log  forge.Logger
}

// NewForgeAPI creates a ForgeAPI over a repository.
func NewForgeAPI(repo *huddle.Repository, log forge.Logger) *ForgeAPI {
	return &ForgeAPI{
		repo: repo,
		log:  log,
	}
}

// RegisterRoutes registers all event routes into the given Forge router
// with full OpenAPI metadata.
func (a *ForgeAPI) RegisterRoutes(router forge.Router) {
	a.registerReadRoutes(router)
	a.registerWriteRoutes(router)
	a.registerStatusRoutes(router)
}

// ---------------------------------------------------------------------------
// Read routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerReadRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("events"))

	if err := g.GET("/events", a.listEvents,
		forge.WithSummary("List events"),
		forge.WithDescription("Returns the caller's events for an intent. Served from the device cache when offline or when the remote fails."),
		forge.WithOperationID("listEvents"),
		forge.WithRequestSchema(ListEventsForgeRequest{}),
		forge.WithListResponse(event.Event{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listEvents route", forge.Error(err))
	}

	if err := g.GET("/events/common", a.commonEvents,
		forge.WithSummary("Common events"),
		forge.WithDescription("Returns events every given user participates in, oldest first."),
		forge.WithOperationID("commonEvents"),
		forge.WithRequestSchema(CommonEventsForgeRequest{}),
		forge.WithListResponse(event.Event{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register commonEvents route", forge.Error(err))
	}

	if err := g.GET("/events/:eventId", a.getEvent,
		forge.WithSummary("Get event"),
		forge.WithDescription("Returns one event. Offline, only previously fetched events are available."),
		forge.WithOperationID("getEvent"),
		forge.WithResponseSchema(http.StatusOK, "Event details", event.Event{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getEvent route", forge.Error(err))
	}

	if err := g.POST("/events/batch", a.getEvents,
		forge.WithSummary("Get events by ID"),
		forge.WithDescription("Returns the events with the given IDs in request order. Unknown IDs are skipped."),
		forge.WithOperationID("getEvents"),
		forge.WithRequestSchema(GetEventsForgeRequest{}),
		forge.WithListResponse(event.Event{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getEvents route", forge.Error(err))
	}
}

func (a *ForgeAPI) listEvents(ctx forge.Context, req *ListEventsForgeRequest) ([]*event.Event, error) {
	intent := event.Overview
	if req.Intent != "" {
		parsed, err := event.ParseIntent(req.Intent)
		if err != nil {
			return nil, forge.BadRequest(err.Error())
		}
		intent = parsed
	}

	events, err := a.repo.ListEvents(ctx.Context(), intent)
	if err != nil {
		return nil, mapError(err)
	}

	return events, nil
}

func (a *ForgeAPI) commonEvents(ctx forge.Context, req *CommonEventsForgeRequest) ([]*event.Event, error) {
	events, err := a.repo.CommonEvents(ctx.Context(), req.Users)
	if err != nil {
		return nil, mapError(err)
	}

	return events, nil
}

func (a *ForgeAPI) getEvent(ctx forge.Context, req *GetEventForgeRequest) (*event.Event, error) {
	evtID, err := id.ParseEventID(req.EventID)
	if err != nil {
		return nil, forge.BadRequest("invalid event ID")
	}

	evt, err := a.repo.GetEvent(ctx.Context(), evtID)
	if err != nil {
		return nil, mapError(err)
	}

	return evt, nil
}

func (a *ForgeAPI) getEvents(ctx forge.Context, req *GetEventsForgeRequest) ([]*event.Event, error) {
	ids, err := id.ParseEventIDs(req.IDs)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	events, err := a.repo.GetEvents(ctx.Context(), ids)
	if err != nil {
		return nil, mapError(err)
	}

	return events, nil
}

// ---------------------------------------------------------------------------
// Write routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerWriteRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("events"))

	if err := g.POST("/events", a.addEvent,
		forge.WithSummary("Create event"),
		forge.WithDescription("Creates an event owned by the caller. Requires connectivity."),
		forge.WithOperationID("addEvent"),
		forge.WithRequestSchema(CreateEventForgeRequest{}),
		forge.WithCreatedResponse(event.Event{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register addEvent route", forge.Error(err))
	}

	if err := g.PUT("/events/:eventId", a.editEvent,
		forge.WithSummary("Replace event"),
		forge.WithDescription("Fully replaces an event and reschedules its reminder. The owner cannot change."),
		forge.WithOperationID("editEvent"),
		forge.WithRequestSchema(UpdateEventForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated event", event.Event{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register editEvent route", forge.Error(err))
	}

	if err := g.DELETE("/events/:eventId", a.deleteEvent,
		forge.WithSummary("Delete event"),
		forge.WithDescription("Deletes an event, evicts it from the cache and cancels its reminder."),
		forge.WithOperationID("deleteEvent"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteEvent route", forge.Error(err))
	}
}

func (a *ForgeAPI) addEvent(ctx forge.Context, req *CreateEventForgeRequest) (*event.Event, error) {
	evt, err := a.repo.AddEvent(ctx.Context(), req.Event())
	if err != nil {
		return nil, mapError(err)
	}

	err = ctx.JSON(http.StatusCreated, evt)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) editEvent(ctx forge.Context, req *UpdateEventForgeRequest) (*event.Event, error) {
	evtID, err := id.ParseEventID(req.EventID)
	if err != nil {
		return nil, forge.BadRequest("invalid event ID")
	}

	evt, err := a.repo.EditEvent(ctx.Context(), evtID, req.Event())
	if err != nil {
		return nil, mapError(err)
	}

	return evt, nil
}

func (a *ForgeAPI) deleteEvent(ctx forge.Context, req *DeleteEventForgeRequest) (*event.Event, error) {
	evtID, err := id.ParseEventID(req.EventID)
	if err != nil {
		return nil, forge.BadRequest("invalid event ID")
	}

	if err := a.repo.DeleteEvent(ctx.Context(), evtID); err != nil {
		return nil, mapError(err)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

// ---------------------------------------------------------------------------
// Status routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerStatusRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("status"))

	if err := g.GET("/status", a.getStatus,
		forge.WithSummary("Cache status"),
		forge.WithDescription("Reports connectivity and the number of cached events."),
		forge.WithOperationID("getStatus"),
		forge.WithResponseSchema(http.StatusOK, "Cache status", StatusForgeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getStatus route", forge.Error(err))
	}
}

func (a *ForgeAPI) getStatus(ctx forge.Context, _ *StatusForgeRequest) (*StatusForgeResponse, error) {
	cached, err := a.repo.CachedEvents(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}

	return &StatusForgeResponse{
		Online:       a.repo.Online(),
		CachedEvents: len(cached),
	}, nil
}
