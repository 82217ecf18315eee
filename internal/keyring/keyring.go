package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested key
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, secret, what string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetToken retrieves the signed-in session token.
// Returns ErrNotFound if nobody is signed in.
func GetToken() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetToken stores the session token.
func SetToken(token string) error {
	return set(constants.DefaultKeyringUser, token, "session token")
}

// DeleteToken removes the session token.
func DeleteToken() error {
	return del(constants.DefaultKeyringUser, "session token")
}

// GetConnectionString retrieves the PostgreSQL connection string used when
// the configured store is "keyring".
func GetConnectionString() (string, error) {
	return get(constants.KeyringStoreUser)
}

// SetConnectionString stores the PostgreSQL connection string.
func SetConnectionString(connStr string) error {
	return set(constants.KeyringStoreUser, connStr, "connection string")
}

// DeleteConnectionString removes the PostgreSQL connection string.
func DeleteConnectionString() error {
	return del(constants.KeyringStoreUser, "connection string")
}

// GetSigningKey retrieves the key session tokens are signed with.
// Returns ErrNotFound if none has been generated yet.
func GetSigningKey() (string, error) {
	return get(constants.KeyringSigningUser)
}

// SetSigningKey stores the session signing key.
func SetSigningKey(key string) error {
	return set(constants.KeyringSigningUser, key, "signing key")
}

// IsAvailable checks if the OS keyring is available on the current system.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
