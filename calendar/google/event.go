package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/agendahub"
)

const dateOnlyFormat = "2006-01-02"

// newAppointment maps one Google Calendar event onto the canonical shape.
// Missing optional fields never fail the mapping; a missing required time
// leaves the zero instant for the caller to reject.
func newAppointment(event *calendar.Event, agendaID string) *agendahub.Appointment {
	title := event.Summary
	if title == "" {
		title = "No Title"
	}
	return &agendahub.Appointment{
		ID:          event.Id,
		Title:       title,
		Description: event.Description,
		StartsAt:    eventTime(event.Start),
		EndsAt:      eventTime(event.End),
		AgendaID:    agendaID,
	}
}

// eventTime reads either the timed field or, for all-day events, the
// date-only field at that calendar date's midnight.
func eventTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err == nil {
			return t
		}
		return time.Time{}
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(dateOnlyFormat, dt.Date, time.Local)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}
