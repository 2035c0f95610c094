// Package calendar renders events as an RFC 5545 iCalendar feed.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/xraph/huddle/event"
)

// DefaultProductID identifies the generator in PRODID.
const DefaultProductID = "-//xraph//huddle//EN"

// Options controls feed-level properties.
type Options struct {
	// Name is shown by calendar clients as the feed title.
	Name string

	// ProductID overrides DefaultProductID.
	ProductID string

	// Now stamps DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

// Export renders one VEVENT per event. Events are written in the order given.
func Export(events []*event.Event, opts Options) ([]byte, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	prodID := opts.ProductID
	if prodID == "" {
		prodID = DefaultProductID
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	stamp := now().UTC()
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.ID.IsNil() {
			return nil, fmt.Errorf("calendar: event %q has no id", e.Title)
		}
		addEvent(cal, e, stamp)
	}
	return []byte(cal.Serialize()), nil
}

func addEvent(cal *ical.Calendar, e *event.Event, stamp time.Time) {
	ve := cal.AddEvent(e.ID.String() + "@huddle")
	ve.SetDtStampTime(stamp)
	ve.SetStartAt(e.Date.UTC())
	ve.SetEndAt(e.End().UTC())
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if !e.CreatedAt.IsZero() {
		ve.SetCreatedTime(e.CreatedAt.UTC())
	}
	if !e.UpdatedAt.IsZero() {
		ve.SetModifiedAt(e.UpdatedAt.UTC())
	}
	if e.HasLocation() {
		if e.Location.Name != "" {
			ve.SetLocation(e.Location.Name)
		}
		ve.SetProperty(ical.ComponentPropertyGeo,
			strconv.FormatFloat(e.Location.Lat, 'f', -1, 64)+";"+strconv.FormatFloat(e.Location.Lng, 'f', -1, 64))
	}
	if e.Kind != "" {
		ve.SetProperty(ical.ComponentPropertyCategories, string(e.Kind))
	}

	class := "PRIVATE"
	if e.Visibility == event.VisibilityPublic {
		class = "PUBLIC"
	}
	ve.SetProperty(ical.ComponentPropertyClass, class)
}
