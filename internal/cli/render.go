package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/due"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/recurrence"
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	dayStyle      = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	selectedStyle = dayStyle.
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Bold(true)
	todayStyle   = dayStyle.Underline(true)
	dayNameStyle = dayStyle.Foreground(lipgloss.Color("240"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

const barWidth = 20

// Swatch renders a small block in the habit's palette color.
func Swatch(colorIndex int) string {
	c, ok := models.PaletteColor(colorIndex)
	if !ok {
		return "  "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("██")
}

// Bar renders a completion bar in the habit's color. Over-completion is drawn
// full.
func Bar(h models.Habit) string {
	hex := "#7571F9"
	if c, ok := models.PaletteColor(h.ColorIndex); ok {
		hex = c.Hex()
	}
	bar := progress.New(
		progress.WithSolidFill(hex),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	pct := float64(h.CompletionPercent()) / 100
	if pct > 1 {
		pct = 1
	}
	return bar.ViewAs(pct)
}

// WeekStrip renders the picker's week with the selected day highlighted and
// today underlined.
func WeekStrip(cal calendar.Calendar, picker *calendar.Picker, today time.Time) string {
	days := picker.Days()
	names := make([]string, 0, len(days))
	nums := make([]string, 0, len(days))
	for _, d := range days {
		style := dayStyle
		switch {
		case picker.IsSelected(d):
			style = selectedStyle
		case cal.SameDay(d, today):
			style = todayStyle
		}
		names = append(names, dayNameStyle.Render(cal.Weekday(d).Short()))
		nums = append(nums, style.Render(fmt.Sprintf("%d", d.Day())))
	}
	title := HeaderStyle.Render(days.Start().Format("January 2006"))
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, names...),
		lipgloss.JoinHorizontal(lipgloss.Top, nums...),
	)
}

// HabitLine renders one habit: swatch, label, name, progress, and bar.
func HabitLine(h models.Habit) string {
	name := h.Name
	if h.Label != "" {
		name = h.Label + " " + name
	}
	amount := fmt.Sprintf("%d/%d", h.Progress, h.Goal)
	if h.Unit != "" {
		amount += " " + h.Unit
	}
	pct := fmt.Sprintf("%3d%%", h.CompletionPercent())
	if h.Done() {
		pct = doneStyle.Render(pct)
	}
	return fmt.Sprintf("%s %-24s %-16s %s %s", Swatch(h.ColorIndex), name, amount, Bar(h), pct)
}

// HabitDetail renders a habit with its id and schedule for listings.
func HabitDetail(h models.Habit, cal calendar.Calendar) string {
	bucket := "daily list"
	if h.IsWeekly {
		bucket = "weekly list"
	}
	return fmt.Sprintf("%s\n    %s", HabitLine(h), mutedStyle.Render(fmt.Sprintf(
		"id %s · %s · from %s · %s", h.ID, recurrence.DescribeRule(h.HabitRule()), cal.FormatDate(h.StartDate), bucket)))
}

// Buckets renders the daily and weekly lists with their counts.
func Buckets(b due.Buckets) string {
	var sb strings.Builder
	section := func(title string, habits []models.Habit) {
		sb.WriteString(HeaderStyle.Render(fmt.Sprintf("%s (%d)", title, len(habits))))
		sb.WriteString("\n")
		if len(habits) == 0 {
			sb.WriteString(mutedStyle.Render("  nothing due"))
			sb.WriteString("\n")
		}
		for _, h := range habits {
			sb.WriteString("  ")
			sb.WriteString(HabitLine(h))
			sb.WriteString("\n")
		}
	}
	section("DAILY", b.Daily)
	sb.WriteString("\n")
	section("WEEKLY", b.Weekly)
	return sb.String()
}
