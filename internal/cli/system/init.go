package system

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
)

type InitCmd struct{}

// Run reports the store location. Opening the store in main already created
// it and applied migrations.
func (c *InitCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Initialized habitual storage at: %s\n", ctx.Docs.GetConfigPath())
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	runner := migrationRunner(ctx)
	if runner == nil {
		ctx.Println("This store has no schema to migrate.")
		return nil
	}

	applied, err := runner.ApplyMigrations(func(msg string) { ctx.Println("  " + msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	version, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	if applied == 0 {
		ctx.Printf("Schema is up to date (version %d).\n", version)
		return nil
	}
	ctx.Printf("Applied %d migration(s); schema is at version %d.\n", applied, version)
	return nil
}
