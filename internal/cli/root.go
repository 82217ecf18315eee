package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// Context carries the wired collaborators into every command's Run method.
type Context struct {
	Config   config.Config
	Calendar calendar.Calendar
	Docs     storage.DocumentStore
	Gate     session.Gate
	Habits   *habits.Store
	Out      io.Writer
	Now      func() time.Time
}

// OpenStore picks the document store backend for location: "memory", a
// PostgreSQL URL or DSN, a .json file, or a SQLite file path.
func OpenStore(location string, fromKeyring bool) storage.DocumentStore {
	switch {
	case location == constants.StoreMemory:
		return storage.NewMemoryStore()
	case postgres.IsConnString(location) || strings.Contains(location, "host="):
		if fromKeyring {
			return postgres.NewFromKeyring(location)
		}
		return postgres.New(location)
	case strings.HasSuffix(location, ".json"):
		return storage.NewJSONStore(config.ExpandHome(location))
	default:
		return sqlite.NewStore(config.ExpandHome(location))
	}
}

// NewContext opens the configured store and wires the session gate and habit
// store on top of it. tokens may be nil to use the OS keyring.
func NewContext(ctx context.Context, cfg config.Config, tokens session.TokenStore) (*Context, error) {
	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	location, fromKeyring, err := cfg.ResolveStore()
	if err != nil {
		return nil, err
	}

	docs := OpenStore(location, fromKeyring)
	if err := docs.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("Store opened", "location", docs.GetConfigPath())

	if tokens == nil {
		tokens = session.KeyringTokenStore{}
	}
	secret := cfg.JWTSecret
	if secret == "" {
		if secret, err = tokens.SigningKey(); err != nil {
			logger.Warn("No signing key available; sessions will not persist", "error", err)
		}
	}
	gate := session.NewLocalGate(docs, tokens, session.Options{
		Secret: secret,
		TTL:    cfg.TokenTTL,
	})

	return &Context{
		Config:   cfg,
		Calendar: cal,
		Docs:     docs,
		Gate:     gate,
		Habits: habits.New(docs, gate, habits.Options{
			Calendar:     cal,
			FetchRetries: cfg.FetchRetries,
			RetryDelay:   constants.DefaultFetchRetryDelay,
		}),
		Out: os.Stdout,
		Now: time.Now,
	}, nil
}

// Close releases the document store.
func (c *Context) Close() error {
	if c.Docs == nil {
		return nil
	}
	return c.Docs.Close()
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// Print writes to the command output.
func (c *Context) Print(args ...interface{}) {
	fmt.Fprint(c.Out, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// Today is the start of the current day in the configured timezone.
func (c *Context) Today() time.Time {
	return c.Calendar.Today(c.Now())
}

// ParseDate accepts "today", "tomorrow", "yesterday", or YYYY-MM-DD. An empty
// string is today.
func (c *Context) ParseDate(s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return c.Today(), nil
	case "tomorrow":
		return c.Calendar.AddDays(c.Today(), 1), nil
	case "yesterday":
		return c.Calendar.AddDays(c.Today(), -1), nil
	}
	d, err := c.Calendar.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", s)
	}
	return d, nil
}

// Load fetches the signed-in user and their habits. Commands that act on
// habits call it first; it fails when nobody is signed in or the fetch
// recorded a failure.
func (c *Context) Load(ctx context.Context) error {
	if err := c.Habits.FetchUser(ctx); err != nil {
		return err
	}
	st := c.Habits.Snapshot()
	if st.ErrorMessage != "" {
		return fmt.Errorf("failed to load habits: %s", st.ErrorMessage)
	}
	if !st.Authenticated {
		return fmt.Errorf("not signed in; run 'habitual signin' first")
	}
	return nil
}

// FindHabit resolves ref against the cached habits, by exact id first and
// then by case-insensitive name.
func (c *Context) FindHabit(ref string) (models.Habit, error) {
	if h, ok := c.Habits.Find(ref); ok {
		return h, nil
	}
	var matches []models.Habit
	for _, h := range c.Habits.Snapshot().Habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q; use the id instead", len(matches), ref)
	}
}

// PerformAutomaticBackup snapshots a SQLite store and silently handles errors.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Docs.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Docs.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
