package system

import (
	"context"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(context.Background()); err != nil {
		return err
	}

	st := ctx.Habits.Snapshot()
	ctx.Println("Validating habits...")
	result := validation.New().ValidateHabits(st.Habits)

	ctx.Println()
	ctx.Println(result.FormatReport())
	if st.Skipped > 0 {
		ctx.Printf("%d stored habit record(s) could not be read and were skipped.\n", st.Skipped)
	}
	// Conflicts are reported, not returned as a failure.
	return nil
}
