package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/guilherme-santos/agendahub"
)

func TestExport(t *testing.T) {
	appts := []*agendahub.Appointment{
		{
			ID:          "evt-1",
			Title:       "Planning",
			Description: "quarterly planning",
			StartsAt:    time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
			EndsAt:      time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
			AgendaID:    "agenda-1",
		},
		{
			ID:       "evt-1",
			Title:    "Gym Session",
			StartsAt: time.Date(2024, time.March, 2, 18, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2024, time.March, 2, 19, 0, 0, 0, time.UTC),
			AgendaID: "agenda-2",
		},
	}

	var buf strings.Builder
	if err := Export(&buf, appts); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"END:VCALENDAR",
		"METHOD:PUBLISH",
		"PRODID:" + productID,
		"SUMMARY:Planning",
		"DESCRIPTION:quarterly planning",
		"SUMMARY:Gym Session",
		// IDs collide across agendas, so UIDs carry the agenda prefix.
		"UID:agenda-1/evt-1",
		"UID:agenda-2/evt-1",
		"DTSTART:20240301T090000Z",
		"DTEND:20240301T100000Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Count(out, "BEGIN:VEVENT") != 2 {
		t.Errorf("want 2 VEVENT blocks:\n%s", out)
	}
}

func TestExportEmpty(t *testing.T) {
	var buf strings.Builder
	if err := Export(&buf, nil); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("empty export = %q", out)
	}
}
