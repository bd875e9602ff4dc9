// Package seed generates the appointments of manually-entered and
// friend-shared agendas, which have no cloud source to synchronize from.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/guilherme-santos/agendahub"
)

var userTitles = []string{
	"Team Meeting", "Doctor Appointment", "Gym Session", "Project Deadline",
	"Lunch with Client", "Dentist Check-up", "Grocery Shopping", "Pay Bills",
	"Read Book", "Call Mom",
}

var friendTitles = []string{
	"Sarah's Birthday Party", "John's Movie Night", "Family Dinner",
	"Weekend Getaway Planning", "Book Club Meetup", "Yoga Class with Emily",
	"Tech Conference", "Charity Run", "Art Exhibition Visit",
}

// Appointments produces between two and six appointments scattered within
// roughly two weeks either side of base, with half-hour-aligned starts
// during waking hours.
func Appointments(owner agendahub.OwnerType, base time.Time, agendaID string) []*agendahub.Appointment {
	titles := userTitles
	if owner == agendahub.OwnerFriend {
		titles = friendTitles
	}

	count := rand.Intn(5) + 2
	appts := make([]*agendahub.Appointment, 0, count)
	for i := 0; i < count; i++ {
		title := titles[rand.Intn(len(titles))]

		dayOffset := rand.Intn(30) - 15
		hour := rand.Intn(12) + 8
		minute := 0
		if rand.Intn(2) == 1 {
			minute = 30
		}
		day := base.AddDate(0, 0, dayOffset)
		startsAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, base.Location())

		var duration time.Duration
		switch rand.Intn(3) {
		case 0:
			duration = 30 * time.Minute
		case 1:
			duration = time.Hour
		default:
			duration = 2 * time.Hour
		}

		description := ""
		if rand.Intn(3) == 0 {
			description = fmt.Sprintf("Details for %s.", title)
		}

		appts = append(appts, &agendahub.Appointment{
			ID:          uuid.NewString(),
			Title:       title,
			Description: description,
			StartsAt:    startsAt,
			EndsAt:      startsAt.Add(duration),
			AgendaID:    agendaID,
		})
	}
	return appts
}
