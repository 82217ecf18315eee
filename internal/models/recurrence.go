package models

import (
	"strings"
	"time"
)

// Weekday is a calendar weekday with a stable ordinal, 1 = Sunday through
// 7 = Saturday. The ordinals are what gets persisted.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// AllWeekdays lists the weekdays in ordinal order.
var AllWeekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf converts a time.Weekday.
func WeekdayOf(wd time.Weekday) Weekday {
	return Weekday(int(wd) + 1)
}

// Valid reports whether the ordinal is in 1..7.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// Std converts to time.Weekday.
func (w Weekday) Std() time.Weekday {
	return time.Weekday(int(w) - 1)
}

// IsWeekend reports whether w is Saturday or Sunday.
func (w Weekday) IsWeekend() bool {
	return w == Saturday || w == Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return "Invalid"
	}
	return w.Std().String()
}

// Short returns the three letter abbreviation ("Mon").
func (w Weekday) Short() string {
	return w.String()[:3]
}

// ParseWeekday accepts full or three letter names, case-insensitively.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, wd := range AllWeekdays {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, true
		}
	}
	return 0, false
}

// WeekdaySet is a set of weekdays stored as a bitmask, bit (ordinal-1).
type WeekdaySet uint8

// NewWeekdaySet builds a set, ignoring invalid ordinals.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Add(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<(d-1)
}

func (s WeekdaySet) Remove(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s &^ (1 << (d - 1))
}

func (s WeekdaySet) Contains(d Weekday) bool {
	return d.Valid() && s&(1<<(d-1)) != 0
}

func (s WeekdaySet) Len() int {
	n := 0
	for _, d := range AllWeekdays {
		if s.Contains(d) {
			n++
		}
	}
	return n
}

func (s WeekdaySet) Empty() bool {
	return s&0x7f == 0
}

// Days returns the members sorted by ordinal.
func (s WeekdaySet) Days() []Weekday {
	var days []Weekday
	for _, d := range AllWeekdays {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Ordinals returns the members' ordinals in ascending order.
func (s WeekdaySet) Ordinals() []int {
	days := s.Days()
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}

// RuleType is the persisted tag of a recurrence rule.
type RuleType string

const (
	RuleDaily          RuleType = "daily"
	RuleWeekdays       RuleType = "weekdays"
	RuleWeekends       RuleType = "weekends"
	RuleWeekly         RuleType = "weekly"
	RuleCustomWeekdays RuleType = "customWeekdays"
	RuleOneTime        RuleType = "oneTime"
)

// Rule is a recurrence policy. The set of implementations is closed.
type Rule interface {
	Type() RuleType
	isRule()
}

// Daily is due every day from the start date.
type Daily struct{}

// Weekdays is due Monday through Friday.
type Weekdays struct{}

// Weekends is due Saturday and Sunday.
type Weekends struct{}

// Weekly is due every seven days on the start date's weekday.
type Weekly struct{}

// OneTime is due only on the start date.
type OneTime struct{}

// CustomWeekdays is due on every weekday in Days. An empty set is never due.
type CustomWeekdays struct {
	Days WeekdaySet
}

func (Daily) Type() RuleType          { return RuleDaily }
func (Weekdays) Type() RuleType       { return RuleWeekdays }
func (Weekends) Type() RuleType       { return RuleWeekends }
func (Weekly) Type() RuleType         { return RuleWeekly }
func (OneTime) Type() RuleType        { return RuleOneTime }
func (CustomWeekdays) Type() RuleType { return RuleCustomWeekdays }

func (Daily) isRule()          {}
func (Weekdays) isRule()       {}
func (Weekends) isRule()       {}
func (Weekly) isRule()         {}
func (OneTime) isRule()        {}
func (CustomWeekdays) isRule() {}
