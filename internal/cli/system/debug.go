package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/storage"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show the store location."`
	DumpHabit *DebugDumpHabitCmd `cmd:"" help:"Dump a stored habit document as JSON."`
	DumpUser  *DebugDumpUserCmd  `cmd:"" help:"Dump the signed-in user's profile document as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Docs.GetConfigPath()})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

// Run prints the stored document rather than the decoded habit, so fields the
// decoder rejects are still visible.
func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	id := cmd.Habit
	if h, err := ctx.FindHabit(cmd.Habit); err == nil {
		id = h.ID
	}
	path := storage.HabitPath(ctx.Habits.Snapshot().User.ID, id)
	doc, err := ctx.Docs.Get(bg, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit not found: %s", cmd.Habit)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}
	return printJSON(ctx, doc)
}

type DebugDumpUserCmd struct{}

func (cmd *DebugDumpUserCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	doc, err := ctx.Docs.Get(bg, storage.UserPath(ctx.Habits.Snapshot().User.ID))
	if err != nil {
		return fmt.Errorf("failed to get user profile: %w", err)
	}
	return printJSON(ctx, doc)
}
