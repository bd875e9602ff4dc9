package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/agendahub"
)

func TestEvents(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": "evt-1",
					"summary": "Planning",
					"description": "quarterly planning",
					"start": {"dateTime": "2024-03-01T09:00:00Z"},
					"end": {"dateTime": "2024-03-01T10:00:00Z"}
				},
				{
					"id": "evt-2",
					"start": {"date": "2024-03-02"},
					"end": {"date": "2024-03-03"}
				},
				{
					"id": "evt-3",
					"summary": "Broken",
					"start": {},
					"end": {"dateTime": "2024-03-04T10:00:00Z"}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL

	appts, err := c.Events(context.Background(), "tok-123", "agenda-1")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	if gotReq.URL.Path != "/calendars/primary/events" {
		t.Errorf("path = %q", gotReq.URL.Path)
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got)
	}
	q := gotReq.URL.Query()
	if q.Get("maxResults") != "50" || q.Get("orderBy") != "startTime" || q.Get("singleEvents") != "true" {
		t.Errorf("query = %v", q)
	}

	// evt-3 has no usable start and must be dropped.
	if len(appts) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appts))
	}

	first := appts[0]
	if first.ID != "evt-1" || first.Title != "Planning" || first.Description != "quarterly planning" {
		t.Errorf("first appointment = %+v", first)
	}
	if first.AgendaID != "agenda-1" {
		t.Errorf("AgendaID = %q", first.AgendaID)
	}
	wantStart := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	if !first.StartsAt.Equal(wantStart) {
		t.Errorf("StartsAt = %v, want %v", first.StartsAt, wantStart)
	}

	// All-day event: date-only field, midnight, fallback title.
	allDay := appts[1]
	if allDay.Title != "No Title" {
		t.Errorf("all-day title = %q, want fallback", allDay.Title)
	}
	wantMidnight := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.Local)
	if !allDay.StartsAt.Equal(wantMidnight) {
		t.Errorf("all-day StartsAt = %v, want %v", allDay.StartsAt, wantMidnight)
	}
}

func TestEventsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "Daily Limit Exceeded"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL

	_, err := c.Events(context.Background(), "tok", "agenda-1")
	perr, ok := err.(*agendahub.ProviderError)
	if !ok {
		t.Fatalf("error type = %T, want *agendahub.ProviderError", err)
	}
	if perr.StatusCode != http.StatusForbidden || perr.Message != "Daily Limit Exceeded" {
		t.Errorf("provider error = %+v", perr)
	}
}

func TestEventsProviderErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL

	_, err := c.Events(context.Background(), "tok", "agenda-1")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "google: " + http.StatusText(http.StatusServiceUnavailable)
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestNewAppointmentMissingOptionalFields(t *testing.T) {
	appt := newAppointment(&calendar.Event{
		Id:    "evt",
		Start: &calendar.EventDateTime{DateTime: "2024-03-01T09:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2024-03-01T09:30:00Z"},
	}, "agenda-1")

	if appt.Title != "No Title" {
		t.Errorf("Title = %q", appt.Title)
	}
	if appt.Description != "" {
		t.Errorf("Description = %q", appt.Description)
	}
}

func TestNewAppointmentNilTimes(t *testing.T) {
	appt := newAppointment(&calendar.Event{Id: "evt"}, "agenda-1")
	if !appt.StartsAt.IsZero() || !appt.EndsAt.IsZero() {
		t.Errorf("missing time fields should map to zero instants, got %v / %v", appt.StartsAt, appt.EndsAt)
	}
}
