package habits

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
)

type LogCmd struct {
	Habit  string `arg:"" help:"Habit name or ID."`
	Amount string `arg:"" help:"New progress, or +N/-N to adjust it. Put -- before a negative adjustment." default:"+1"`
}

// parseAmount applies amount to current. A leading sign makes it relative.
func parseAmount(amount string, current int) (int, error) {
	amount = strings.TrimSpace(amount)
	n, err := strconv.Atoi(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: expected a whole number", amount)
	}
	if strings.HasPrefix(amount, "+") || strings.HasPrefix(amount, "-") {
		return current + n, nil
	}
	return n, nil
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	value, err := parseAmount(c.Amount, h.Progress)
	if err != nil {
		return err
	}

	if err := ctx.Habits.UpdateProgress(bg, h, value); err != nil {
		return err
	}
	h.Progress = value

	ctx.Printf("Logged %s: %d/%d (%d%%)\n", h.Name, h.Progress, h.Goal, h.CompletionPercent())
	return nil
}
