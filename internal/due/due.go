// Package due groups habits into the daily and weekly lists shown for a
// selected date.
package due

import (
	"time"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/recurrence"
)

// Buckets holds the habits due on a selected date. A habit is in at most one
// bucket, decided by its IsWeekly flag.
type Buckets struct {
	Daily  []models.Habit
	Weekly []models.Habit
}

// Partition splits habits into daily and weekly buckets for selected.
// Input order is preserved within each bucket.
//
// Daily habits are included when their rule occurs on selected. Weekly habits
// are included for every day of every week from the one containing their
// start date, without consulting the rule.
func Partition(habits []models.Habit, selected time.Time, cal calendar.Calendar) Buckets {
	var b Buckets
	for _, h := range habits {
		if h.IsWeekly {
			if WeekOpen(h, selected, cal) {
				b.Weekly = append(b.Weekly, h)
			}
			continue
		}
		if recurrence.Occurs(h, selected, cal) {
			b.Daily = append(b.Daily, h)
		}
	}
	return b
}

// WeekOpen reports whether a weekly habit's window has opened by selected.
func WeekOpen(h models.Habit, selected time.Time, cal calendar.Calendar) bool {
	day := cal.StartOfDay(selected)
	start := cal.StartOfDay(h.StartDate)
	if day.Before(start) {
		return false
	}
	return !cal.StartOfWeek(day).Before(cal.StartOfWeek(start))
}

// Len returns the total number of due habits.
func (b Buckets) Len() int {
	return len(b.Daily) + len(b.Weekly)
}
