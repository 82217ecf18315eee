package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/recurrence"
)

// NewHabitForm creates the form for adding a habit.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Label").
				Description("An emoji or short tag (optional)").
				Value(&fm.Label),
			huh.NewInput().
				Title("Goal").
				Value(&fm.Goal).
				Validate(validateGoal),
			huh.NewInput().
				Title("Unit").
				Description("e.g. glasses, pages (optional)").
				Value(&fm.Unit),
			huh.NewInput().
				Title("Repeat").
				Description("daily, weekdays, weekends, weekly, once, or custom:mon,fri").
				Value(&fm.Repeat).
				Validate(func(s string) error {
					_, err := recurrence.ParseRule(s)
					return err
				}),
			huh.NewConfirm().
				Title("Track weekly?").
				Description("Weekly habits stay on the list all week").
				Value(&fm.Weekly),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateGoal(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("goal must be a whole number")
	}
	if i < 0 {
		return fmt.Errorf("goal cannot be negative")
	}
	return nil
}

// habit builds the habit described by the form. colorIndex is taken from the
// number of existing habits so colors rotate through the palette.
func (fm *HabitFormModel) habit(existing int) (models.Habit, error) {
	if err := validateGoal(fm.Goal); err != nil {
		return models.Habit{}, err
	}
	goal, _ := strconv.Atoi(strings.TrimSpace(fm.Goal))
	rule, err := recurrence.ParseRule(fm.Repeat)
	if err != nil {
		return models.Habit{}, err
	}
	return models.Habit{
		Name:       strings.TrimSpace(fm.Name),
		Label:      strings.TrimSpace(fm.Label),
		ColorIndex: existing % constants.PaletteSize,
		Goal:       goal,
		Unit:       strings.TrimSpace(fm.Unit),
		Rule:       rule,
		IsWeekly:   fm.Weekly,
	}, nil
}
