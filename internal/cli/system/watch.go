package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/due"
)

type WatchCmd struct {
	Interval time.Duration `help:"Refresh interval (default: refresh_interval from the config)."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.Watch(runCtx, ctx)
}

// Watch shows today's due habits and redraws whenever the periodic refresh
// changes them, until runCtx is done.
func (c *WatchCmd) Watch(runCtx context.Context, ctx *cli.Context) error {
	if err := ctx.Load(runCtx); err != nil {
		return err
	}
	interval := c.Interval
	if interval <= 0 {
		interval = ctx.Config.RefreshInterval
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx.Habits.Refresh(runCtx, interval)
	}()

	clearScreen := ctx.Out == os.Stdout && isatty.IsTerminal(os.Stdout.Fd())
	render := func() {
		if clearScreen {
			ctx.Print("\033[H\033[2J")
		}
		st := ctx.Habits.Snapshot()
		picker := calendar.NewPicker(ctx.Calendar, ctx.Today())
		ctx.Println(cli.WeekStrip(ctx.Calendar, picker, ctx.Today()))
		ctx.Println()
		ctx.Print(cli.Buckets(due.Partition(st.Habits, picker.Selected, ctx.Calendar)))
		if st.ErrorMessage != "" {
			ctx.Println(cli.ErrorStyle.Render("⚠ " + st.ErrorMessage))
		}
		ctx.Printf("\nRefreshed %s · every %s · Ctrl+C to quit\n", ctx.Now().Format("15:04:05"), interval)
	}

	// Drop the signal from the initial load.
	select {
	case <-ctx.Habits.Changed():
	default:
	}
	render()

	for {
		select {
		case <-runCtx.Done():
			<-done
			return nil
		case <-ctx.Habits.Changed():
			render()
		}
	}
}
