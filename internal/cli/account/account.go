package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/session"
)

// promptPassword asks for a password on the terminal without echoing it.
func promptPassword(title string) (string, error) {
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		}).
		Run()
	return password, err
}

type SignUpCmd struct {
	Name     string `arg:"" help:"Display name."`
	Email    string `arg:"" help:"Email address."`
	Password string `help:"Password (prompted when omitted)." env:"HABITUAL_PASSWORD"`
}

func (c *SignUpCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = promptPassword("Choose a password"); err != nil {
			return err
		}
	}

	bg := context.Background()
	id, err := ctx.Gate.SignUp(bg, c.Name, c.Email, password)
	if err != nil {
		if errors.Is(err, session.ErrAccountExists) {
			return fmt.Errorf("an account for %s already exists; use 'habitual signin'", c.Email)
		}
		return err
	}
	if err := ctx.Habits.FetchUser(bg); err != nil {
		return err
	}
	warnFetchFailure(ctx)

	ctx.Printf("✓ Signed up as %s\n", id.Email)
	return nil
}

type SignInCmd struct {
	Email    string `arg:"" help:"Email address."`
	Password string `help:"Password (prompted when omitted)." env:"HABITUAL_PASSWORD"`
}

func (c *SignInCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = promptPassword("Password"); err != nil {
			return err
		}
	}

	bg := context.Background()
	id, err := ctx.Gate.SignIn(bg, c.Email, password)
	if err != nil {
		return err
	}
	if err := ctx.Habits.FetchUser(bg); err != nil {
		return err
	}
	warnFetchFailure(ctx)

	ctx.Printf("✓ Signed in as %s (%d habits)\n", id.Email, len(ctx.Habits.Snapshot().Habits))
	return nil
}

type SignOutCmd struct{}

func (c *SignOutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Habits.SignOut(context.Background()); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type WhoAmICmd struct{}

func (c *WhoAmICmd) Run(ctx *cli.Context) error {
	if err := ctx.Habits.FetchUser(context.Background()); err != nil {
		return err
	}
	warnFetchFailure(ctx)
	st := ctx.Habits.Snapshot()
	if !st.Authenticated || st.User == nil {
		ctx.Println("Not signed in.")
		return nil
	}

	name := st.User.Name
	if name == "" {
		name = "(no name)"
	}
	ctx.Printf("%s <%s>\n", name, st.User.Email)
	ctx.Printf("User ID: %s\n", st.User.ID)
	ctx.Printf("Habits:  %d\n", len(st.Habits))
	if st.Skipped > 0 {
		ctx.Printf("Skipped: %d unreadable habit record(s)\n", st.Skipped)
	}
	return nil
}

// warnFetchFailure reports a failed profile or habit fetch. Signing in has
// already succeeded at that point, so it is not an error.
func warnFetchFailure(ctx *cli.Context) {
	if msg := ctx.Habits.Snapshot().ErrorMessage; msg != "" {
		ctx.Println(cli.ErrorStyle.Render("⚠ Could not load habits: " + msg))
	}
}
