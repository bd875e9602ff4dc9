// Package dategrid provides the calendar-field arithmetic and grid
// generation behind the day/week/month views. Everything here is pure:
// the caller supplies every reference instant.
package dategrid

import "time"

// StartOfWeek returns midnight of the week-start day at or before t.
// weekStartsOn follows time.Weekday numbering (0=Sunday .. 6=Saturday).
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	diff := (int(t.Weekday()) - int(weekStartsOn) + 7) % 7
	y, m, d := t.AddDate(0, 0, -diff).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfWeek returns the last representable millisecond of the week
// containing t.
func EndOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	start := StartOfWeek(t, weekStartsOn)
	y, m, d := start.AddDate(0, 0, 6).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last representable millisecond of t's month.
func EndOfMonth(t time.Time) time.Time {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// AddDays adds n calendar days, crossing month and year boundaries.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddWeeks adds n*7 calendar days.
func AddWeeks(t time.Time, n int) time.Time {
	return AddDays(t, 7*n)
}

// AddMonths adds n calendar months. When the day-of-month would overflow
// the target month (Jan 31 + 1 month), the result clamps to the last day
// of the target month instead of rolling into the following one.
func AddMonths(t time.Time, n int) time.Time {
	y := t.Year()
	m := int(t.Month()) - 1 + n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := t.Day()
	if last := daysIn(y, month, t.Location()); day > last {
		day = last
	}
	return time.Date(y, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// SameDay reports whether a and b fall on the same calendar day.
// False when either is the zero instant.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same calendar month.
// False when either is the zero instant.
func SameMonth(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// maxGridWeeks bounds grid generation; no month needs more than six rows.
const maxGridWeeks = 6

// MonthGrid returns the rectangular day layout for the month containing t:
// an ordered slice of week rows, each exactly seven days, starting at
// StartOfWeek(StartOfMonth(t)). Between four and six rows are produced; a
// trailing row made up entirely of next-month filler is dropped once the
// month's end has been passed and at least four rows exist.
func MonthGrid(t time.Time, weekStartsOn time.Weekday) [][]time.Time {
	month := t.Month()
	end := EndOfMonth(t)
	cur := StartOfWeek(StartOfMonth(t), weekStartsOn)

	weeks := make([][]time.Time, 0, maxGridWeeks)
	for i := 0; i < maxGridWeeks; i++ {
		week := make([]time.Time, 0, 7)
		for j := 0; j < 7; j++ {
			week = append(week, cur)
			cur = AddDays(cur, 1)
		}
		weeks = append(weeks, week)

		if cur.Month() != month && cur.After(end) && len(weeks) >= 4 {
			if !weekTouchesMonth(weeks[len(weeks)-1], month) {
				weeks = weeks[:len(weeks)-1]
			}
			break
		}
	}
	return weeks
}

func weekTouchesMonth(week []time.Time, month time.Month) bool {
	for _, d := range week {
		if d.Month() == month {
			return true
		}
	}
	return false
}

// WeekdayNames returns the seven weekday labels starting from
// weekStartsOn. When short is true the three-letter form is used. Only
// length and order are contractual; the text is English.
func WeekdayNames(weekStartsOn time.Weekday, short bool) []string {
	names := make([]string, 7)
	for i := 0; i < 7; i++ {
		day := time.Weekday((int(weekStartsOn) + i) % 7)
		name := day.String()
		if short {
			name = name[:3]
		}
		names[i] = name
	}
	return names
}

// FormatMonthYear renders the month-view heading, e.g. "March 2024".
func FormatMonthYear(t time.Time) string {
	return t.Format("January 2006")
}

// FormatDayDate renders the day-view heading, e.g.
// "Friday, March 1, 2024".
func FormatDayDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// FormatWeekRange renders the week-view heading for the week starting at
// start, collapsing the month and year when the week does not cross them.
func FormatWeekRange(start time.Time) string {
	end := AddDays(start, 6)
	switch {
	case start.Year() != end.Year():
		return start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
	case start.Month() == end.Month():
		return start.Format("Jan 2") + " - " + end.Format("2, 2006")
	default:
		return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
	}
}
