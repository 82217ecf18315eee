// Package session tracks who is signed in. The habit store only asks it for
// the current identity and to sign out; sign-in and sign-up go through it
// directly from the command line.
package session

import (
	"context"
	"errors"
)

var (
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoToken            = errors.New("no session token")
)

// Identity is an authenticated user.
type Identity struct {
	UID   string
	Email string
}

// Gate is the session collaborator.
type Gate interface {
	// CurrentIdentity returns the signed-in identity, if any. Absence is not
	// an error.
	CurrentIdentity(ctx context.Context) (Identity, bool)
	SignUp(ctx context.Context, name, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context) error
}
