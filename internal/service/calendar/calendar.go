// Package calendar resolves ISO weeks and the fixed delivery schedule.
package calendar

import (
	"time"

	"restock/internal/model"
)

// dayNames are the French weekday names used on order sheets, indexed by
// time.Weekday.
var dayNames = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

// deliveryDays is the fixed schedule: Thursday and Saturday of the week,
// then Tuesday of the following week.
var deliveryDays = [...]struct {
	day      time.Weekday
	nextWeek bool
}{
	{time.Thursday, false},
	{time.Saturday, false},
	{time.Tuesday, true},
}

// WeekDate is one day of a week.
type WeekDate struct {
	Date    string `json:"date"`
	DayName string `json:"dayName"`
}

// DayName returns the French name of the weekday.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// ISOWeekOf returns the (year, week) a date is filed under. Week 1 dates in
// December belong to the next year; week 52/53 dates in January to the
// previous one.
func ISOWeekOf(date time.Time) (year, week int) {
	_, week = date.ISOWeek()
	year = date.Year()

	switch {
	case week == 1 && date.Month() == time.December:
		year++
	case week >= 52 && date.Month() == time.January:
		year--
	}
	return year, week
}

// CurrentWeek returns the ISO week containing now.
func CurrentWeek(now time.Time) (year, week int) {
	return ISOWeekOf(now)
}

// WeekStart returns the Monday of the given ISO week, in UTC.
func WeekStart(year, week int) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}

// DatesOfWeek returns the seven days of the ISO week, Monday first.
func DatesOfWeek(year, week int) []WeekDate {
	start := WeekStart(year, week)

	dates := make([]WeekDate, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		dates = append(dates, WeekDate{
			Date:    d.Format(model.DateLayout),
			DayName: DayName(d.Weekday()),
		})
	}
	return dates
}

// ISOWeeksInYear returns 52 or 53.
func ISOWeeksInYear(year int) int {
	// December 28th is always in the last week.
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// NextWeek returns the ISO week after (year, week).
func NextWeek(year, week int) (int, int) {
	if week >= ISOWeeksInYear(year) {
		return year + 1, 1
	}
	return year, week + 1
}

// PreviousWeek returns the ISO week before (year, week).
func PreviousWeek(year, week int) (int, int) {
	if week <= 1 {
		return year - 1, ISOWeeksInYear(year - 1)
	}
	return year, week - 1
}

// DeliveryDatesFor returns the delivery dates of the week's orders, in
// order-number order. A day that cannot be found is left out, so callers
// must accept fewer than three dates.
func DeliveryDatesFor(year, week int) []string {
	current := DatesOfWeek(year, week)
	ny, nw := NextWeek(year, week)
	next := DatesOfWeek(ny, nw)

	dates := make([]string, 0, len(deliveryDays))
	for _, d := range deliveryDays {
		days := current
		if d.nextWeek {
			days = next
		}
		if date, ok := findDay(days, DayName(d.day)); ok {
			dates = append(dates, date)
		}
	}
	return dates
}

// WeeksInMonth lists the ISO weeks of year that have at least one day in
// the month, ascending.
func WeeksInMonth(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[int]bool)
	var weeks []int

	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		y, w := ISOWeekOf(d)
		if y != year || seen[w] {
			continue
		}
		seen[w] = true
		weeks = append(weeks, w)
	}
	return weeks
}

// ValidWeek reports whether week exists in year.
func ValidWeek(year, week int) bool {
	return year > 0 && week >= 1 && week <= ISOWeeksInYear(year)
}

func findDay(days []WeekDate, name string) (string, bool) {
	for _, d := range days {
		if d.DayName == name {
			return d.Date, true
		}
	}
	return "", false
}
