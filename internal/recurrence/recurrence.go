package recurrence

import (
	"time"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/models"
)

// Occurs reports whether habit is due on date. A habit never occurs before the
// day of its start date. The result depends only on the arguments.
func Occurs(habit models.Habit, date time.Time, cal calendar.Calendar) bool {
	day := cal.StartOfDay(date)
	start := cal.StartOfDay(habit.StartDate)
	if day.Before(start) {
		return false
	}

	weekday := cal.Weekday(day)
	startWeekday := cal.Weekday(start)

	switch rule := habit.HabitRule().(type) {
	case models.Daily:
		return true
	case models.Weekdays:
		return !weekday.IsWeekend()
	case models.Weekends:
		return weekday.IsWeekend()
	case models.Weekly:
		// The weekday check is implied by the modulo; both are kept.
		if weekday != startWeekday {
			return false
		}
		return cal.DayCount(start, day)%7 == 0
	case models.CustomWeekdays:
		return rule.Days.Contains(weekday)
	case models.OneTime:
		return cal.SameDay(start, day)
	default:
		return false
	}
}

// NextOccurrence returns the first day on or after from, within horizon days,
// on which habit occurs.
func NextOccurrence(habit models.Habit, from time.Time, cal calendar.Calendar, horizon int) (time.Time, bool) {
	day := cal.StartOfDay(from)
	if start := cal.StartOfDay(habit.StartDate); day.Before(start) {
		day = start
	}
	for i := 0; i <= horizon; i++ {
		if Occurs(habit, day, cal) {
			return day, true
		}
		day = cal.AddDays(day, 1)
	}
	return time.Time{}, false
}

// OccurrencesInWeek returns the days of the week containing date on which
// habit occurs.
func OccurrencesInWeek(habit models.Habit, date time.Time, cal calendar.Calendar) []time.Time {
	var days []time.Time
	for _, d := range cal.WeekOf(date) {
		if Occurs(habit, d, cal) {
			days = append(days, d)
		}
	}
	return days
}
