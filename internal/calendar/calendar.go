// Package calendar provides day and week arithmetic in a fixed location.
//
// All day math goes through year/month/day components rather than dividing
// durations, so DST transitions never shift a result by a day.
package calendar

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// Calendar is a location plus a week-start convention.
type Calendar struct {
	Location     *time.Location
	FirstWeekday time.Weekday
}

// New returns a calendar for loc whose weeks begin on first.
func New(loc *time.Location, first time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Location: loc, FirstWeekday: first}
}

// Default is the local timezone with Sunday-first weeks.
func Default() Calendar {
	return New(time.Local, time.Sunday)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// StartOfDay truncates t to midnight in the calendar's location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// StartOfWeek returns midnight of the first day of the week containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	back := (int(day.Weekday()) - int(c.FirstWeekday) + 7) % 7
	return c.AddDays(day, -back)
}

// AddDays moves t by n calendar days, keeping the wall clock time.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	return t.In(c.loc()).AddDate(0, 0, n)
}

// AddWeeks moves t by n calendar weeks.
func (c Calendar) AddWeeks(t time.Time, n int) time.Time {
	return c.AddDays(t, 7*n)
}

// DayCount returns the number of whole calendar days from one day to another.
// The result is negative when to precedes from.
func (c Calendar) DayCount(from, to time.Time) int {
	from, to = from.In(c.loc()), to.In(c.loc())
	// Noon UTC on each civil date makes the difference an exact multiple of 24h.
	a := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// Weekday returns the weekday of t in the calendar's location.
func (c Calendar) Weekday(t time.Time) models.Weekday {
	return models.WeekdayOf(t.In(c.loc()).Weekday())
}

// SameDay reports whether a and b fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DayCount(a, b) == 0
}

// SameWeek reports whether a and b fall in the same calendar week.
func (c Calendar) SameWeek(a, b time.Time) bool {
	return c.StartOfWeek(a).Equal(c.StartOfWeek(b))
}

// Today returns the start of the day containing now.
func (c Calendar) Today(now time.Time) time.Time {
	return c.StartOfDay(now)
}

// ParseDate parses a YYYY-MM-DD string as midnight in the calendar's location.
func (c Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc()), nil
}

// FormatDate renders t as YYYY-MM-DD in the calendar's location.
func (c Calendar) FormatDate(t time.Time) string {
	return t.In(c.loc()).Format(constants.DateFormat)
}
