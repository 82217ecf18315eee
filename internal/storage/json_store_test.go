package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.DocumentStore {
		s := storage.NewMemoryStore()
		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("init: %v", err)
		}
		return s
	})
}

func TestJSONStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.DocumentStore {
		s := storage.NewJSONStore(filepath.Join(t.TempDir(), "docs.json"))
		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("init: %v", err)
		}
		return s
	})
}

func TestJSONStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "docs.json")

	first := storage.NewJSONStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := first.Set(ctx, storage.HabitPath("u1", "h1"), map[string]any{"name": "Stretch"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("storage file not written: %v", err)
	}

	second := storage.NewJSONStore(path)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	doc, err := second.Get(ctx, storage.HabitPath("u1", "h1"))
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if doc.Fields["name"] != "Stretch" {
		t.Errorf("name = %v, want Stretch", doc.Fields["name"])
	}
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := storage.NewJSONStore(path).Init(context.Background()); err == nil {
		t.Error("Init() should fail on a corrupt file")
	}
}

func TestMemoryStoreConfigPath(t *testing.T) {
	if got := storage.NewMemoryStore().GetConfigPath(); got != "memory" {
		t.Errorf("GetConfigPath() = %q, want memory", got)
	}
}
