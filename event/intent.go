package event

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Intent selects the query shape and post-filter for a list read.
type Intent string

const (
	// Overview lists events the caller participates in.
	Overview Intent = "overview"
	// History lists finished events the caller participated in.
	History Intent = "history"
	// Search lists public events the caller could still join.
	Search Intent = "search"
	// Map lists located events that have not finished and that the caller
	// joined or could discover publicly, deduplicated across both queries.
	Map Intent = "map"
)

// Intents lists every supported intent.
var Intents = []Intent{Overview, History, Search, Map}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool { return slices.Contains(Intents, i) }

// ParseIntent parses a case-insensitive intent name.
func ParseIntent(s string) (Intent, error) {
	i := Intent(strings.ToLower(strings.TrimSpace(s)))
	if !i.Valid() {
		return "", fmt.Errorf("event: unknown intent %q", s)
	}
	return i, nil
}

// Match reports whether e satisfies the intent's predicate for userID at now.
func (i Intent) Match(e *Event, userID string, now time.Time) bool {
	switch i {
	case Overview:
		return e.HasParticipant(userID)
	case History:
		return e.HasParticipant(userID) && e.State(now) == Expired
	case Search:
		return e.Visibility == VisibilityPublic &&
			e.OwnerID != userID &&
			!e.HasParticipant(userID)
	case Map:
		// Same reach as the remote union of joined and public events.
		return (e.HasParticipant(userID) || e.Visibility == VisibilityPublic) &&
			e.HasLocation() && e.State(now) != Expired
	default:
		return false
	}
}

// Filter applies the intent predicate, deduplicates by ID and sorts by date
// ascending. It is the one filter used for remote results and cache scans
// alike, and it never mutates its input.
func Filter(events []*Event, intent Intent, userID string, now time.Time) []*Event {
	out := make([]*Event, 0, len(events))
	for _, e := range Dedup(events) {
		if intent.Match(e, userID, now) {
			out = append(out, e)
		}
	}
	SortByDate(out)
	return out
}

// Common returns events whose participants include every user in userIDs,
// sorted by date. An empty userIDs selects nothing.
func Common(events []*Event, userIDs []string) []*Event {
	if len(userIDs) == 0 {
		return []*Event{}
	}
	out := make([]*Event, 0, len(events))
	for _, e := range Dedup(events) {
		if e.HasAllParticipants(userIDs) {
			out = append(out, e)
		}
	}
	SortByDate(out)
	return out
}

// Dedup drops later occurrences of an ID, keeping first-seen order.
func Dedup(events []*Event) []*Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		key := e.ID.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// SortByDate sorts in place by start date, oldest first. Ties keep input order.
func SortByDate(events []*Event) {
	slices.SortStableFunc(events, func(a, b *Event) int {
		return a.Date.Compare(b.Date)
	})
}
