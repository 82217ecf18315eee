package due

import (
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/models"
)

var cal = calendar.New(time.UTC, time.Sunday)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ids(habits []models.Habit) []string {
	out := make([]string, 0, len(habits))
	for _, h := range habits {
		out = append(out, h.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPartitionWeeklyWindow(t *testing.T) {
	// Wednesday 2024-05-15; its week (Sunday-first) runs 05-12 .. 05-18.
	habit := models.Habit{ID: "w", StartDate: date(2024, 5, 15), IsWeekly: true, Rule: models.Weekly{}}

	tests := []struct {
		name     string
		selected time.Time
		want     bool
	}{
		{"start day", date(2024, 5, 15), true},
		{"later same week", date(2024, 5, 18), true},
		{"next week monday", date(2024, 5, 20), true},
		{"months later", date(2024, 9, 2), true},
		{"previous week", date(2024, 5, 8), false},
		{"same week before start", date(2024, 5, 13), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Partition([]models.Habit{habit}, tt.selected, cal)
			if got := len(b.Weekly) == 1; got != tt.want {
				t.Errorf("weekly bucket contains habit = %v, want %v", got, tt.want)
			}
			if len(b.Daily) != 0 {
				t.Errorf("weekly habit leaked into daily bucket")
			}
		})
	}
}

func TestPartitionWeeklyIgnoresRule(t *testing.T) {
	// A weekly-flagged habit with a weekends-only rule still shows on a Tuesday.
	habit := models.Habit{ID: "w", StartDate: date(2024, 5, 13), IsWeekly: true, Rule: models.Weekends{}}
	b := Partition([]models.Habit{habit}, date(2024, 5, 14), cal)
	if len(b.Weekly) != 1 {
		t.Fatalf("expected habit in weekly bucket, got %v", ids(b.Weekly))
	}
}

func TestPartitionDisjointAndStable(t *testing.T) {
	start := date(2024, 5, 1)
	habits := []models.Habit{
		{ID: "a", StartDate: start, Rule: models.Daily{}},
		{ID: "b", StartDate: start, Rule: models.Daily{}, IsWeekly: true},
		{ID: "c", StartDate: start, Rule: models.Weekends{}},
		{ID: "d", StartDate: start, Rule: models.CustomWeekdays{Days: models.NewWeekdaySet(models.Tuesday)}},
		{ID: "e", StartDate: start, Rule: models.Weekly{}, IsWeekly: true},
		{ID: "f", StartDate: date(2024, 6, 1), Rule: models.Daily{}},
	}

	// Tuesday 2024-05-14.
	b := Partition(habits, date(2024, 5, 14), cal)

	if want := []string{"a", "d"}; !equal(ids(b.Daily), want) {
		t.Errorf("daily = %v, want %v", ids(b.Daily), want)
	}
	if want := []string{"b", "e"}; !equal(ids(b.Weekly), want) {
		t.Errorf("weekly = %v, want %v", ids(b.Weekly), want)
	}

	seen := map[string]int{}
	for _, h := range append(b.Daily, b.Weekly...) {
		seen[h.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("habit %s appears %d times", id, n)
		}
	}
	if b.Len() != 4 {
		t.Errorf("Len() = %d, want 4", b.Len())
	}
}

func TestPartitionEmpty(t *testing.T) {
	b := Partition(nil, date(2024, 5, 14), cal)
	if b.Len() != 0 {
		t.Errorf("expected empty buckets, got %d", b.Len())
	}
}

func TestPartitionMondayFirstWeeks(t *testing.T) {
	mondayCal := calendar.New(time.UTC, time.Monday)
	// Sunday 2024-05-19 closes the Monday-first week that began 05-13.
	habit := models.Habit{ID: "w", StartDate: date(2024, 5, 19), IsWeekly: true}

	if b := Partition([]models.Habit{habit}, date(2024, 5, 20), mondayCal); len(b.Weekly) != 1 {
		t.Error("expected habit in the following Monday-first week")
	}
	if b := Partition([]models.Habit{habit}, date(2024, 5, 18), mondayCal); len(b.Weekly) != 0 {
		t.Error("habit should not be visible before its start date")
	}
}

func TestSummarize(t *testing.T) {
	b := Buckets{
		Daily: []models.Habit{
			{ID: "a", Progress: 32, Goal: 80},
			{ID: "b", Progress: 5, Goal: 0},
		},
		Weekly: []models.Habit{
			{ID: "c", Progress: 12, Goal: 10},
		},
	}

	s := Summarize(b)

	if s.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", s.Total())
	}
	if s.Daily[0].Percent != 40 {
		t.Errorf("a percent = %d, want 40", s.Daily[0].Percent)
	}
	if s.Daily[1].Percent != 100 || !s.Daily[1].Done {
		t.Errorf("zero goal should be 100%% and done, got %+v", s.Daily[1])
	}
	if s.Weekly[0].Percent != 120 {
		t.Errorf("over-completion percent = %d, want 120", s.Weekly[0].Percent)
	}
	if s.Completed != 2 {
		t.Errorf("Completed = %d, want 2", s.Completed)
	}
}
