// Package ics serializes the aggregated calendar view as an iCalendar
// feed so other tools can subscribe to it.
package ics

import (
	"io"

	ical "github.com/arran4/golang-ical"

	"github.com/guilherme-santos/agendahub"
)

const productID = "-//agendahub//agendahub//EN"

// Export writes the given appointments as one VCALENDAR. Appointment IDs
// are only unique within their agenda, so the UID is prefixed with it.
func Export(w io.Writer, appts []*agendahub.Appointment) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, appt := range appts {
		event := cal.AddEvent(appt.AgendaID + "/" + appt.ID)
		event.SetDtStampTime(appt.StartsAt)
		event.SetStartAt(appt.StartsAt)
		event.SetEndAt(appt.EndsAt)
		event.SetSummary(appt.Title)
		if appt.Description != "" {
			event.SetDescription(appt.Description)
		}
	}
	return cal.SerializeTo(w)
}
