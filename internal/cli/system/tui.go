package system

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctx.Load(bg); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	model := tui.New(bg, ctx.Habits, ctx.Now, ctx.Config.RefreshInterval)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(bg)).Run(); err != nil {
		return err
	}
	return nil
}
