package models

import (
	"math"
	"time"
)

// Habit represents a recurring practice with a numeric goal.
//
// IsWeekly decides which list bucket the habit is shown in. It is independent
// of Rule: a Daily rule may still be flagged weekly.
type Habit struct {
	ID         string    `json:"id,omitempty"` // empty until persisted
	Name       string    `json:"name"`
	Label      string    `json:"label"` // emoji
	ColorIndex int       `json:"colorIndex"`
	Progress   int       `json:"progress"`
	Goal       int       `json:"goal"`
	Unit       string    `json:"unit"`
	StartDate  time.Time `json:"startDate"`
	Rule       Rule      `json:"-"`
	IsWeekly   bool      `json:"isWeekly"`
}

// HasID reports whether the habit has been persisted.
func (h Habit) HasID() bool {
	return h.ID != ""
}

// CompletionPercent returns progress as a rounded percentage of goal.
// A zero goal is always 100. Over-completion is not clamped.
func (h Habit) CompletionPercent() int {
	if h.Goal == 0 {
		return 100
	}
	return int(math.Round(float64(h.Progress) / float64(h.Goal) * 100))
}

// Done reports whether progress has reached the goal.
func (h Habit) Done() bool {
	return h.Progress >= h.Goal
}

// HabitRule returns the habit's rule, treating a nil rule as Daily.
func (h Habit) HabitRule() Rule {
	if h.Rule == nil {
		return Daily{}
	}
	return h.Rule
}
