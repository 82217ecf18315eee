package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
)

// MinPasswordLength matches the hosted auth provider the app was built on.
const MinPasswordLength = 6

// Account document fields
const (
	fieldUID          = "uid"
	fieldPasswordHash = "passwordHash"
	fieldCreatedAt    = "createdAt"
)

// Claims is the payload of a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Options configures a LocalGate.
type Options struct {
	// Secret signs session tokens. Empty means a random key that lasts for
	// the life of the gate.
	Secret string
	TTL    time.Duration
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

// LocalGate authenticates against accounts kept in the document store and
// hands out signed tokens.
type LocalGate struct {
	docs   storage.DocumentStore
	tokens TokenStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

var _ Gate = (*LocalGate)(nil)

func NewLocalGate(docs storage.DocumentStore, tokens TokenStore, opts Options) *LocalGate {
	if opts.Secret == "" {
		opts.Secret = NewSigningKey()
	}
	if opts.TTL <= 0 {
		opts.TTL = constants.DefaultTokenTTL
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	return &LocalGate{
		docs:   docs,
		tokens: tokens,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		cost:   opts.Cost,
		now:    time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email address %q", email)
	}
	return email, nil
}

func (g *LocalGate) SignUp(ctx context.Context, name, email, password string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if len(password) < MinPasswordLength {
		return Identity{}, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	accountPath := storage.AccountPath(email)
	if _, err := g.docs.Get(ctx, accountPath); err == nil {
		return Identity{}, ErrAccountExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Identity{}, apperrors.Remote("get", accountPath, err)
	}

	uid, err := g.docs.NewID(ctx, constants.CollectionUsers)
	if err != nil {
		return Identity{}, apperrors.Remote("new id", constants.CollectionUsers, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := map[string]any{
		fieldUID:             uid,
		constants.FieldEmail: email,
		fieldPasswordHash:    string(hash),
		fieldCreatedAt:       g.now().UTC().Format(time.RFC3339),
	}
	if err := g.docs.Set(ctx, accountPath, account); err != nil {
		return Identity{}, apperrors.Remote("set", accountPath, err)
	}

	profile := map[string]any{
		constants.FieldID:    uid,
		constants.FieldName:  strings.TrimSpace(name),
		constants.FieldEmail: email,
	}
	if err := g.docs.Set(ctx, storage.UserPath(uid), profile); err != nil {
		return Identity{}, apperrors.Remote("set", storage.UserPath(uid), err)
	}

	id := Identity{UID: uid, Email: email}
	if err := g.issue(id); err != nil {
		return Identity{}, err
	}
	logger.Info("Account created", "uid", uid)
	return id, nil
}

func (g *LocalGate) SignIn(ctx context.Context, email, password string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	accountPath := storage.AccountPath(email)
	doc, err := g.docs.Get(ctx, accountPath)
	if errors.Is(err, storage.ErrNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, apperrors.Remote("get", accountPath, err)
	}

	hash, _ := doc.Fields[fieldPasswordHash].(string)
	uid, _ := doc.Fields[fieldUID].(string)
	if hash == "" || uid == "" {
		return Identity{}, apperrors.Decodef(accountPath, "account is missing credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	id := Identity{UID: uid, Email: email}
	if err := g.issue(id); err != nil {
		return Identity{}, err
	}
	logger.Debug("Signed in", "uid", uid)
	return id, nil
}

func (g *LocalGate) SignOut(ctx context.Context) error {
	if err := g.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (g *LocalGate) CurrentIdentity(ctx context.Context) (Identity, bool) {
	raw, err := g.tokens.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			logger.Warn("Failed to load session token", "error", err)
		}
		return Identity{}, false
	}

	id, err := g.Verify(raw)
	if err != nil {
		logger.Debug("Ignoring invalid session token", "error", err)
		return Identity{}, false
	}
	return id, true
}

// Issue signs a token for id.
func (g *LocalGate) Issue(id Identity) (string, error) {
	now := g.now()
	claims := Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    constants.AppName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Verify checks a token's signature and expiry and returns its identity.
func (g *LocalGate) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AppName),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, errors.New("invalid token claims")
	}
	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func (g *LocalGate) issue(id Identity) error {
	tok, err := g.Issue(id)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}
	if err := g.tokens.Save(tok); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
