package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "habitual.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.DocumentStore {
		return newTestStore(t)
	})
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "habitual.db")

	first := NewStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := first.Set(ctx, storage.UserPath("u1"), map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	first.Close()

	// Re-running migrations on an existing database must be a no-op.
	second := NewStore(path)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	doc, err := second.Get(ctx, storage.UserPath("u1"))
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if doc.Fields["name"] != "Ada" {
		t.Errorf("name = %v, want Ada", doc.Fields["name"])
	}
	if doc.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStoreConfigPath(t *testing.T) {
	s := NewStore("/tmp/x/habitual.db")
	if got := s.GetConfigPath(); got != "/tmp/x/habitual.db" {
		t.Errorf("GetConfigPath() = %q", got)
	}
}
