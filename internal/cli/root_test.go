package cli_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func TestOpenStore(t *testing.T) {
	assert.IsType(t, &storage.JSONStore{}, cli.OpenStore("memory", false))
	assert.IsType(t, &postgres.Store{}, cli.OpenStore("postgres://ada@localhost/habitual", false))
	assert.IsType(t, &postgres.Store{}, cli.OpenStore("host=localhost dbname=habitual", false))
	assert.IsType(t, &postgres.Store{}, cli.OpenStore("postgres://ada:pw@localhost/habitual", true))
	assert.IsType(t, &storage.JSONStore{}, cli.OpenStore(filepath.Join(t.TempDir(), "h.json"), false))
	assert.IsType(t, &sqlite.Store{}, cli.OpenStore(filepath.Join(t.TempDir(), "h.db"), false))
}

func TestNewContextMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Store = "memory"
	cfg.Timezone = "UTC"
	cfg.FirstWeekday = "monday"

	ctx, err := cli.NewContext(context.Background(), cfg, &session.MemoryTokenStore{})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, "memory", ctx.Docs.GetConfigPath())
	assert.Equal(t, time.Monday, ctx.Calendar.FirstWeekday)
	assert.False(t, ctx.Habits.Snapshot().Authenticated)
}

func TestNewContextSignsWithStoredKey(t *testing.T) {
	cfg := config.Default()
	cfg.Store = "memory"
	cfg.Timezone = "UTC"
	tokens := &session.MemoryTokenStore{}

	ctx, err := cli.NewContext(context.Background(), cfg, tokens)
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.Gate.SignUp(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	key, err := tokens.SigningKey()
	require.NoError(t, err)
	tok, err := tokens.Load()
	require.NoError(t, err)

	verifier := session.NewLocalGate(ctx.Docs, tokens, session.Options{Secret: key})
	id, err := verifier.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestNewContextRejectsBadTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.Store = "memory"
	cfg.Timezone = "Mars/Olympus_Mons"

	_, err := cli.NewContext(context.Background(), cfg, &session.MemoryTokenStore{})
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	ctx, _ := clitest.NewContext(t)

	tests := []struct {
		in   string
		want string
	}{
		{"", "2024-05-15"},
		{"today", "2024-05-15"},
		{"Tomorrow", "2024-05-16"},
		{"yesterday", "2024-05-14"},
		{"2024-02-29", "2024-02-29"},
	}
	for _, tt := range tests {
		got, err := ctx.ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, ctx.Calendar.FormatDate(got), tt.in)
	}

	_, err := ctx.ParseDate("15/05/2024")
	assert.ErrorContains(t, err, "invalid date format")
}

func TestLoadRequiresSignIn(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	err := ctx.Load(context.Background())
	assert.ErrorContains(t, err, "not signed in")

	clitest.SignUp(t, ctx)
	assert.NoError(t, ctx.Load(context.Background()))
}

// flakyQueryStore fails every Query once failing is set.
type flakyQueryStore struct {
	storage.DocumentStore
	failing bool
}

func (s *flakyQueryStore) Query(ctx context.Context, collection string) ([]storage.Document, error) {
	if s.failing {
		return nil, errors.New("connection reset")
	}
	return s.DocumentStore.Query(ctx, collection)
}

func TestLoadReportsFetchFailure(t *testing.T) {
	docs := &flakyQueryStore{DocumentStore: storage.NewMemoryStore()}
	ctx, _ := clitest.NewContextWith(t, docs)
	clitest.SignUp(t, ctx)

	docs.failing = true
	err := ctx.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load habits")
	assert.Contains(t, err.Error(), "connection reset")

	docs.failing = false
	assert.NoError(t, ctx.Load(context.Background()))
}

func TestFindHabit(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	clitest.SignUp(t, ctx)
	water := clitest.AddHabit(t, ctx, "Water")

	got, err := ctx.FindHabit(water.ID)
	require.NoError(t, err)
	assert.Equal(t, water.ID, got.ID)

	got, err = ctx.FindHabit("WATER")
	require.NoError(t, err)
	assert.Equal(t, water.ID, got.ID)

	_, err = ctx.FindHabit("Juggle")
	assert.ErrorContains(t, err, `habit "Juggle" not found`)

	clitest.AddHabit(t, ctx, "water")
	_, err = ctx.FindHabit("water")
	assert.ErrorContains(t, err, "use the id instead")
}
