package microsoft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guilherme-santos/agendahub"
)

func TestEvents(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"value": [
				{
					"id": "AAMk-1",
					"subject": "Standup",
					"bodyPreview": "daily standup",
					"start": {"dateTime": "2024-03-01T09:00:00.0000000", "timeZone": "UTC"},
					"end": {"dateTime": "2024-03-01T09:15:00.0000000", "timeZone": "UTC"}
				},
				{
					"id": "AAMk-2",
					"start": {"dateTime": "2024-03-02T14:00:00", "timeZone": "UTC"},
					"end": {"dateTime": "2024-03-02T15:00:00", "timeZone": "UTC"}
				},
				{
					"id": "AAMk-3",
					"subject": "Broken",
					"start": {},
					"end": {"dateTime": "2024-03-03T10:00:00", "timeZone": "UTC"}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL
	c.now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}

	appts, err := c.Events(context.Background(), "tok-ms", "agenda-2")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	if gotReq.URL.Path != "/me/calendar/events" {
		t.Errorf("path = %q", gotReq.URL.Path)
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer tok-ms" {
		t.Errorf("Authorization = %q", got)
	}
	q := gotReq.URL.Query()
	if q.Get("$top") != "50" {
		t.Errorf("$top = %q", q.Get("$top"))
	}
	if q.Get("$select") != "id,subject,bodyPreview,start,end" {
		t.Errorf("$select = %q", q.Get("$select"))
	}
	if q.Get("$orderby") != "start/dateTime ASC" {
		t.Errorf("$orderby = %q", q.Get("$orderby"))
	}

	// ±1-month window around the injected now: Feb 1 through Apr 30.
	if got, want := q.Get("startDateTime"), "2024-02-01T00:00:00Z"; got != want {
		t.Errorf("startDateTime = %q, want %q", got, want)
	}
	if got, want := q.Get("endDateTime"), "2024-04-30T23:59:59Z"; got != want {
		t.Errorf("endDateTime = %q, want %q", got, want)
	}

	// AAMk-3 has no usable start and must be dropped.
	if len(appts) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appts))
	}

	first := appts[0]
	if first.ID != "AAMk-1" || first.Title != "Standup" || first.Description != "daily standup" {
		t.Errorf("first appointment = %+v", first)
	}
	if first.AgendaID != "agenda-2" {
		t.Errorf("AgendaID = %q", first.AgendaID)
	}
	wantStart := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	if !first.StartsAt.Equal(wantStart) {
		t.Errorf("StartsAt = %v, want %v", first.StartsAt, wantStart)
	}

	if appts[1].Title != "No Title" {
		t.Errorf("missing subject should fall back, got %q", appts[1].Title)
	}
}

func TestEventsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": "InvalidAuthenticationToken", "message": "Access token has expired."}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL

	_, err := c.Events(context.Background(), "tok", "agenda-2")
	perr, ok := err.(*agendahub.ProviderError)
	if !ok {
		t.Fatalf("error type = %T, want *agendahub.ProviderError", err)
	}
	if perr.Source != agendahub.SourceMicrosoft || perr.Message != "Access token has expired." {
		t.Errorf("provider error = %+v", perr)
	}
}

func TestEventTime(t *testing.T) {
	got := eventTime(graphDateTime{DateTime: "2024-03-01T09:00:00.0000000", TimeZone: "UTC"})
	want := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("eventTime = %v, want %v", got, want)
	}

	if !eventTime(graphDateTime{}).IsZero() {
		t.Error("empty dateTime should map to the zero instant")
	}
	if !eventTime(graphDateTime{DateTime: "not-a-time"}).IsZero() {
		t.Error("malformed dateTime should map to the zero instant")
	}
}
