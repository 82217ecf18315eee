package calendar

import "time"

// Week is the seven day-starts of one calendar week.
type Week [7]time.Time

// WeekOf returns the week containing t.
func (c Calendar) WeekOf(t time.Time) Week {
	var w Week
	start := c.StartOfWeek(t)
	for i := range w {
		w[i] = c.AddDays(start, i)
	}
	return w
}

// Start is the first day of the week.
func (w Week) Start() time.Time { return w[0] }

// End is the last day of the week.
func (w Week) End() time.Time { return w[6] }

// Picker is the state of a week-at-a-time date selector. Anchor is always the
// start of the week being shown; Selected is a day start.
type Picker struct {
	cal      Calendar
	Anchor   time.Time
	Selected time.Time
}

// NewPicker opens the picker on the week containing selected.
func NewPicker(cal Calendar, selected time.Time) *Picker {
	p := &Picker{cal: cal}
	p.Select(selected)
	return p
}

// Select moves the selection and shows the week containing it.
func (p *Picker) Select(date time.Time) {
	p.Selected = p.cal.StartOfDay(date)
	p.Anchor = p.cal.StartOfWeek(p.Selected)
}

// NextWeek shifts the shown week and the selection forward one week.
func (p *Picker) NextWeek() {
	p.shift(1)
}

// PrevWeek shifts the shown week and the selection back one week.
func (p *Picker) PrevWeek() {
	p.shift(-1)
}

func (p *Picker) shift(n int) {
	p.Anchor = p.cal.StartOfWeek(p.cal.AddWeeks(p.Anchor, n))
	p.Selected = p.cal.StartOfDay(p.cal.AddWeeks(p.Selected, n))
}

// Days returns the days of the shown week.
func (p *Picker) Days() Week {
	return p.cal.WeekOf(p.Anchor)
}

// IsSelected reports whether date is the selected day.
func (p *Picker) IsSelected(date time.Time) bool {
	return p.cal.SameDay(date, p.Selected)
}
