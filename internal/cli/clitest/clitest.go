// Package clitest wires a command context over an in-memory store for
// command tests.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

const (
	Email    = "ada@example.com"
	Password = "correct-horse"
)

// Today is the fixed clock of test contexts, a Wednesday.
var Today = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

// NewContext returns a context over a fresh memory store, UTC with
// Sunday-first weeks, whose output is captured in the returned buffer.
func NewContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	return NewContextWith(t, storage.NewMemoryStore())
}

// NewContextWith is NewContext over docs, which it initializes and closes.
func NewContextWith(t *testing.T, docs storage.DocumentStore) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	if err := docs.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	cal := calendar.New(time.UTC, time.Sunday)
	gate := session.NewLocalGate(docs, &session.MemoryTokenStore{}, session.Options{
		Secret: "test-secret",
		Cost:   bcrypt.MinCost,
	})

	cfg := config.Default()
	cfg.Store = "memory"
	cfg.Timezone = "UTC"

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config:   cfg,
		Calendar: cal,
		Docs:     docs,
		Gate:     gate,
		Habits:   habits.New(docs, gate, habits.Options{Calendar: cal, FetchRetries: 1}),
		Out:      out,
		Now:      func() time.Time { return Today },
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, out
}

// SignUp creates the test account and loads it into the habit store.
func SignUp(t *testing.T, ctx *cli.Context) {
	t.Helper()
	bg := context.Background()
	if _, err := ctx.Gate.SignUp(bg, "Ada", Email, Password); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := ctx.Habits.FetchUser(bg); err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if msg := ctx.Habits.Snapshot().ErrorMessage; msg != "" {
		t.Fatalf("fetch user: %s", msg)
	}
}

// AddHabit stores a daily habit with a goal of 10 starting on Today.
func AddHabit(t *testing.T, ctx *cli.Context, name string) models.Habit {
	t.Helper()
	h, err := ctx.Habits.AddHabit(context.Background(), models.Habit{
		Name:      name,
		Goal:      10,
		StartDate: Today,
		Rule:      models.Daily{},
	})
	if err != nil {
		t.Fatalf("add habit %q: %v", name, err)
	}
	return h
}
