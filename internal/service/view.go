package service

import (
	"context"
	"sort"
	"time"

	"github.com/eventlog-app/eventlog/internal/model"
	"github.com/eventlog-app/eventlog/internal/repository"
)

// EventService exposes the read-only events list in display order.
type EventService struct {
	events *repository.EventRepository
}

// NewEventService constructs an EventService.
func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

// ListUpcoming returns all events sorted for the dashboard.
func (s *EventService) ListUpcoming(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	return UpcomingEvents(events), nil
}

// UpcomingEvents sorts events ascending by parsed date. Events whose date is
// absent or unparseable sort to the end. The sort is stable, so events with
// equal or missing dates keep their original relative order.
func UpcomingEvents(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		di, iok := parseEventDate(out[i].Date)
		dj, jok := parseEventDate(out[j].Date)
		if !iok {
			return false
		}
		if !jok {
			return true
		}
		return di.Before(dj)
	})
	return out
}

// IsRegistered reports whether a registration exists matching both the event
// id and the email exactly.
func IsRegistered(eventID int64, email string, regs []model.Registration) bool {
	for _, reg := range regs {
		if reg.EventID == eventID && reg.Email == email {
			return true
		}
	}
	return false
}

// ResolveEvent looks up a registration's event by id. A missing event yields
// a placeholder instead of an error: a registration is never dropped from
// display because its event was deleted or never loaded.
func ResolveEvent(reg model.Registration, events []model.Event) model.Event {
	for _, ev := range events {
		if ev.ID == reg.EventID {
			return ev
		}
	}
	return model.Event{Title: "Unknown event", Date: "", Location: ""}
}

// parseEventDate accepts the ISO shapes seed data uses: a full RFC 3339
// timestamp or a bare date.
func parseEventDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
