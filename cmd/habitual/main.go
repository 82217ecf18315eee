package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/account"
	"github.com/julianstephens/habitual/internal/cli/backups"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"${config_path}"`
	Store    string `help:"Override the store: a SQLite path, a PostgreSQL connection string without a password, 'keyring', or 'memory'."`
	Timezone string `help:"Override the IANA timezone used for dates."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd     `cmd:"" help:"Initialize habitual storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Signup   account.SignUpCmd  `cmd:"" help:"Create an account and sign in."`
	Signin   account.SignInCmd  `cmd:"" help:"Sign in."`
	Signout  account.SignOutCmd `cmd:"" help:"Sign out."`
	Whoami   account.WhoAmICmd  `cmd:"" help:"Show the signed-in user."`
	Habit    habits.HabitCmd    `cmd:"" help:"Manage habits."`
	Log      habits.LogCmd      `cmd:"" help:"Log progress on a habit."`
	Due      habits.DueCmd      `cmd:"" help:"Show the habits due on a day."`
	Stats    habits.StatsCmd    `cmd:"" help:"Show completion for a day."`
	Watch    system.WatchCmd    `cmd:"" help:"Show today's habits and keep them refreshed."`
	Validate system.ValidateCmd `cmd:"" help:"Validate stored habits."`
	DebugCmd system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the connection string stored in the OS keyring."`
	Backup   backups.BackupCmd  `cmd:"" help:"Manage SQLite store backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with daily and weekly goals"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	)

	cfg, err := config.Load(CLI.Config, constants.DotEnvFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	cfg.Debug = cfg.Debug || CLI.Debug
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: config.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx, err := cli.NewContext(context.Background(), cfg, nil)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer appCtx.Close()

	if err := ctx.Run(appCtx); err != nil {
		appCtx.Close()
		apperrors.Fatal(err)
	}
}
