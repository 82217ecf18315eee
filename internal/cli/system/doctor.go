package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warn marks checks whose failure is reported but not fatal.
	warn bool
	run  func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Store reachable", run: checkStoreReachable},
		{name: "Schema version", run: checkSchemaVersion},
		{name: "Migrations complete", run: checkMigrationsComplete},
		{name: "Backups present", warn: true, run: checkBackupsPresent},
		{name: "OS keyring", warn: true, run: checkKeyring},
		{name: "Habit data", run: checkHabitData},
		{name: "Clock/timezone", run: checkClockTimezone},
	}

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if s, ok := ctx.Docs.(sqlStore); ok {
		db := s.GetDB()
		if db == nil {
			return errors.New("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
		return nil
	}
	_, err := ctx.Docs.Get(context.Background(), storage.UserPath("doctor"))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner := migrationRunner(ctx)
	if runner == nil {
		return nil
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner := migrationRunner(ctx)
	if runner == nil {
		return nil
	}
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Docs.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Docs.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'habitual backup create'")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is unavailable; sessions will not persist between commands")
	}
	return nil
}

func checkHabitData(ctx *cli.Context) error {
	if err := ctx.Habits.FetchUser(context.Background()); err != nil {
		return err
	}
	st := ctx.Habits.Snapshot()
	if st.ErrorMessage != "" {
		return errors.New(st.ErrorMessage)
	}
	if !st.Authenticated {
		ctx.Printf("   Note: not signed in, habit data not checked\n")
		return nil
	}
	if st.Skipped > 0 {
		return fmt.Errorf("%d habit record(s) could not be read", st.Skipped)
	}
	result := validation.New().ValidateHabits(st.Habits)
	if errs := result.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d invalid habit(s); run 'habitual validate' for details", len(errs))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Calendar.Location == time.UTC {
		ctx.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
