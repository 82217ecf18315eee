package models

import (
	"reflect"
	"testing"
	"time"
)

func TestWeekdayOrdinals(t *testing.T) {
	if Sunday != 1 || Saturday != 7 {
		t.Fatalf("ordinals changed: Sunday=%d Saturday=%d", Sunday, Saturday)
	}
	for _, wd := range AllWeekdays {
		if WeekdayOf(wd.Std()) != wd {
			t.Errorf("%v does not round trip through time.Weekday", wd)
		}
	}
	if WeekdayOf(time.Monday) != Monday {
		t.Error("time.Monday should map to Monday")
	}
	if Weekday(0).Valid() || Weekday(8).Valid() {
		t.Error("0 and 8 are not weekdays")
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want Weekday
		ok   bool
	}{
		{"mon", Monday, true},
		{"Friday", Friday, true},
		{" SAT ", Saturday, true},
		{"thurs", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseWeekday(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(Friday, Monday, Monday)
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Contains(Monday) || s.Contains(Tuesday) {
		t.Error("unexpected membership")
	}
	if got := s.Ordinals(); !reflect.DeepEqual(got, []int{2, 6}) {
		t.Errorf("Ordinals() = %v, want [2 6]", got)
	}

	s = s.Remove(Monday).Add(Weekday(9))
	if !reflect.DeepEqual(s.Days(), []Weekday{Friday}) {
		t.Errorf("Days() = %v, want [Friday]", s.Days())
	}

	var empty WeekdaySet
	if !empty.Empty() || empty.Len() != 0 {
		t.Error("zero set should be empty")
	}
}

func TestWeekend(t *testing.T) {
	for _, wd := range AllWeekdays {
		want := wd == Saturday || wd == Sunday
		if wd.IsWeekend() != want {
			t.Errorf("%v.IsWeekend() = %v", wd, wd.IsWeekend())
		}
	}
	if Monday.Short() != "Mon" {
		t.Errorf("Short() = %q", Monday.Short())
	}
}
