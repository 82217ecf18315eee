package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/recurrence"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Label  string `short:"l" help:"Emoji label."`
	Color  int    `short:"c" help:"Palette color index (0-11); defaults to the next unused color." default:"-1"`
	Goal   int    `short:"g" help:"Target amount." default:"1"`
	Unit   string `short:"u" help:"Unit of the goal, e.g. pages."`
	Start  string `short:"s" help:"Start date (YYYY-MM-DD or 'today')." default:"today"`
	Repeat string `short:"r" help:"Repeat rule: daily, weekdays, weekends, weekly, once, or custom:mon,fri." default:"daily"`
	Weekly bool   `short:"w" help:"Show the habit in the weekly list."`
}

func (c *HabitAddCmd) Validate() error {
	if c.Color < -1 || c.Color >= constants.PaletteSize {
		return fmt.Errorf("color must be between 0 and %d", constants.PaletteSize-1)
	}
	if c.Goal < 0 {
		return fmt.Errorf("goal cannot be negative")
	}
	return nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	rule, err := recurrence.ParseRule(c.Repeat)
	if err != nil {
		return err
	}
	start, err := ctx.ParseDate(c.Start)
	if err != nil {
		return err
	}

	color := c.Color
	if color < 0 {
		color = len(ctx.Habits.Snapshot().Habits) % constants.PaletteSize
	}

	h, err := ctx.Habits.AddHabit(bg, models.Habit{
		Name:       strings.TrimSpace(c.Name),
		Label:      c.Label,
		ColorIndex: color,
		Goal:       c.Goal,
		Unit:       c.Unit,
		StartDate:  start,
		Rule:       rule,
		IsWeekly:   c.Weekly,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (ID: %s)\n", h.Name, h.ID)
	return nil
}

type HabitEditCmd struct {
	Habit    string  `arg:"" help:"Habit name or ID."`
	Name     *string `help:"New name."`
	Label    *string `help:"New emoji label."`
	Color    *int    `help:"New palette color index."`
	Goal     *int    `help:"New goal."`
	Unit     *string `help:"New unit."`
	Start    *string `help:"New start date."`
	Repeat   *string `help:"New repeat rule."`
	Weekly   *bool   `help:"Show in the weekly list." negatable:""`
	Progress *int    `help:"Overwrite the current progress."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Name != nil {
		h.Name = strings.TrimSpace(*c.Name)
	}
	if c.Label != nil {
		h.Label = *c.Label
	}
	if c.Color != nil {
		h.ColorIndex = *c.Color
	}
	if c.Goal != nil {
		h.Goal = *c.Goal
	}
	if c.Unit != nil {
		h.Unit = *c.Unit
	}
	if c.Progress != nil {
		h.Progress = *c.Progress
	}
	if c.Weekly != nil {
		h.IsWeekly = *c.Weekly
	}
	if c.Start != nil {
		if h.StartDate, err = ctx.ParseDate(*c.Start); err != nil {
			return err
		}
	}
	if c.Repeat != nil {
		if h.Rule, err = recurrence.ParseRule(*c.Repeat); err != nil {
			return err
		}
	}

	if err := ctx.Habits.UpdateHabit(bg, h); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", h.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q? This cannot be undone.", h.Name)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Habits.DeleteHabit(bg, h); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitListCmd struct {
	Weekly bool `help:"Show only weekly-list habits."`
	Daily  bool `help:"Show only daily-list habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(context.Background()); err != nil {
		return err
	}

	st := ctx.Habits.Snapshot()
	shown := 0
	for _, h := range st.Habits {
		if (c.Weekly && !h.IsWeekly) || (c.Daily && h.IsWeekly) {
			continue
		}
		if shown == 0 {
			ctx.Println("Habits:")
		}
		ctx.Println("  " + cli.HabitDetail(h, ctx.Calendar))
		shown++
	}
	if shown == 0 {
		ctx.Println("No habits found.")
	}
	if st.Skipped > 0 {
		ctx.Printf("\n%d habit record(s) could not be read and were skipped.\n", st.Skipped)
	}
	return nil
}
