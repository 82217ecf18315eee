package session

import (
	"crypto/rand"
	"errors"
	"sync"

	"github.com/julianstephens/habitual/internal/keyring"
)

// TokenStore persists the session token between invocations.
type TokenStore interface {
	// Load returns ErrNoToken when no token is stored.
	Load() (string, error)
	Save(token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error
	// SigningKey returns the key tokens are signed with, generating and
	// keeping a random one on first use.
	SigningKey() (string, error)
}

// NewSigningKey returns a random signing key.
func NewSigningKey() string {
	return rand.Text()
}

// KeyringTokenStore keeps the token in the OS keyring.
type KeyringTokenStore struct{}

func (KeyringTokenStore) Load() (string, error) {
	tok, err := keyring.GetToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	return tok, err
}

func (KeyringTokenStore) Save(token string) error {
	return keyring.SetToken(token)
}

func (KeyringTokenStore) Clear() error {
	if err := keyring.DeleteToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (KeyringTokenStore) SigningKey() (string, error) {
	key, err := keyring.GetSigningKey()
	if !errors.Is(err, keyring.ErrNotFound) {
		return key, err
	}
	key = NewSigningKey()
	if err := keyring.SetSigningKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// MemoryTokenStore keeps the token for the life of the process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
	key   string
}

func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryTokenStore) SigningKey() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.key == "" {
		m.key = NewSigningKey()
	}
	return m.key, nil
}
