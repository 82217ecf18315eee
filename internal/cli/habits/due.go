package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/due"
)

type DueCmd struct {
	Date     string `help:"Day to show (YYYY-MM-DD or 'today')." default:"today"`
	NextWeek bool   `help:"Move the selection forward one week." xor:"shift"`
	PrevWeek bool   `help:"Move the selection back one week." xor:"shift"`
}

func (c *DueCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(context.Background()); err != nil {
		return err
	}

	selected, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	picker := calendar.NewPicker(ctx.Calendar, selected)
	switch {
	case c.NextWeek:
		picker.NextWeek()
	case c.PrevWeek:
		picker.PrevWeek()
	}

	st := ctx.Habits.Snapshot()
	buckets := due.Partition(st.Habits, picker.Selected, ctx.Calendar)

	ctx.Println(cli.WeekStrip(ctx.Calendar, picker, ctx.Today()))
	ctx.Println()
	ctx.Printf("Due on %s:\n\n", picker.Selected.Format("Monday, January 2"))
	ctx.Print(cli.Buckets(buckets))
	if st.ErrorMessage != "" {
		ctx.Println(cli.ErrorStyle.Render(fmt.Sprintf("⚠ %s", st.ErrorMessage)))
	}
	return nil
}

type StatsCmd struct {
	Date string `help:"Day to summarize (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(context.Background()); err != nil {
		return err
	}

	selected, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	summary := due.Summarize(due.Partition(ctx.Habits.Snapshot().Habits, selected, ctx.Calendar))

	ctx.Printf("Stats for %s\n", ctx.Calendar.FormatDate(selected))
	section := func(title string, entries []due.Entry) {
		if len(entries) == 0 {
			return
		}
		ctx.Printf("\n%s\n", cli.HeaderStyle.Render(title))
		for _, e := range entries {
			mark := "○"
			if e.Done {
				mark = "✓"
			}
			ctx.Printf("  %s %-24s %4d%%\n", mark, e.Habit.Name, e.Percent)
		}
	}
	section("Daily", summary.Daily)
	section("Weekly", summary.Weekly)

	total := summary.Total()
	if total == 0 {
		ctx.Println("\nNothing due.")
		return nil
	}
	ctx.Printf("\nCompleted: %d/%d (%d%%)\n", summary.Completed, total, summary.Completed*100/total)
	return nil
}
