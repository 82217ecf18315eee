package due

import "github.com/julianstephens/habitual/internal/models"

// Entry is one habit's line on the stats view.
type Entry struct {
	Habit   models.Habit
	Percent int
	Done    bool
}

// Summary is the stats view of a pair of buckets.
type Summary struct {
	Daily  []Entry
	Weekly []Entry
	// Completed counts habits in either bucket whose goal is met.
	Completed int
}

// Summarize computes completion percentages for every due habit.
func Summarize(b Buckets) Summary {
	var s Summary
	s.Daily = entries(b.Daily, &s.Completed)
	s.Weekly = entries(b.Weekly, &s.Completed)
	return s
}

func entries(habits []models.Habit, completed *int) []Entry {
	out := make([]Entry, 0, len(habits))
	for _, h := range habits {
		e := Entry{Habit: h, Percent: h.CompletionPercent(), Done: h.Done()}
		if e.Done {
			*completed++
		}
		out = append(out, e)
	}
	return out
}

// Total is the number of habits in the summary.
func (s Summary) Total() int {
	return len(s.Daily) + len(s.Weekly)
}
