// Package storagetest holds the behaviour every DocumentStore backend must
// share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/storage"
)

// Factory returns a fresh, initialised store for one subtest.
type Factory func(t *testing.T) storage.DocumentStore

// Run exercises the DocumentStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("set and get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		path := storage.HabitPath("u1", "h1")
		require.NoError(t, s.Set(ctx, path, map[string]any{"name": "Drink Water", "goal": 80}))

		doc, err := s.Get(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "h1", doc.ID)
		assert.Equal(t, path, doc.Path)
		assert.Equal(t, "Drink Water", doc.Fields["name"])
		assert.Equal(t, float64(80), doc.Fields["goal"])
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), storage.HabitPath("u1", "nope"))
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("set replaces whole document", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		path := storage.UserPath("u1")

		require.NoError(t, s.Set(ctx, path, map[string]any{"name": "A", "email": "a@example.com"}))
		require.NoError(t, s.Set(ctx, path, map[string]any{"name": "B"}))

		doc, err := s.Get(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "B", doc.Fields["name"])
		_, hasEmail := doc.Fields["email"]
		assert.False(t, hasEmail, "set should not merge old fields")
	})

	t.Run("update merges", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		path := storage.HabitPath("u1", "h1")

		require.NoError(t, s.Set(ctx, path, map[string]any{"name": "Read", "progress": 1}))
		require.NoError(t, s.Update(ctx, path, map[string]any{"progress": 5}))

		doc, err := s.Get(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "Read", doc.Fields["name"])
		assert.Equal(t, float64(5), doc.Fields["progress"])
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(context.Background(), storage.HabitPath("u1", "ghost"), map[string]any{"progress": 1})
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		path := storage.HabitPath("u1", "h1")

		require.NoError(t, s.Set(ctx, path, map[string]any{"name": "Run"}))
		require.NoError(t, s.Delete(ctx, path))
		require.NoError(t, s.Delete(ctx, path))

		_, err := s.Get(ctx, path)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("query in creation order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Set(ctx, storage.HabitPath("u1", id), map[string]any{"name": id}))
		}
		// another user's habits and nested documents stay out of the result
		require.NoError(t, s.Set(ctx, storage.HabitPath("u2", "x"), map[string]any{"name": "x"}))
		require.NoError(t, s.Set(ctx, storage.UserPath("u1"), map[string]any{"name": "owner"}))
		// rewriting keeps the original position
		require.NoError(t, s.Set(ctx, storage.HabitPath("u1", "c"), map[string]any{"name": "c2"}))

		docs, err := s.Query(ctx, storage.HabitsPath("u1"))
		require.NoError(t, err)
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
		assert.Equal(t, "c2", docs[0].Fields["name"])
	})

	t.Run("query empty collection", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.Query(context.Background(), storage.HabitsPath("nobody"))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("nested values", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		path := storage.HabitPath("u1", "h1")

		rule := map[string]any{"type": "customWeekdays", "customDays": []int{2, 6}}
		require.NoError(t, s.Set(ctx, path, map[string]any{"repeatRule": rule, "isWeekly": true}))

		doc, err := s.Get(ctx, path)
		require.NoError(t, err)
		got, ok := doc.Fields["repeatRule"].(map[string]any)
		require.True(t, ok, "repeatRule has type %T", doc.Fields["repeatRule"])
		assert.Equal(t, "customWeekdays", got["type"])
		assert.Equal(t, []any{float64(2), float64(6)}, got["customDays"])
		assert.Equal(t, true, doc.Fields["isWeekly"])
	})

	t.Run("new ids are unique", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			id, err := s.NewID(ctx, storage.HabitsPath("u1"))
			require.NoError(t, err)
			require.NotEmpty(t, id)
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("invalid paths", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.Set(ctx, storage.HabitsPath("u1"), map[string]any{})
		assert.True(t, errors.Is(err, storage.ErrInvalidPath), "got %v", err)

		_, err = s.Query(ctx, storage.UserPath("u1"))
		assert.True(t, errors.Is(err, storage.ErrInvalidPath), "got %v", err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Set(ctx, storage.HabitPath("u1", "h1"), map[string]any{"name": "x"})
		assert.Error(t, err)
	})
}
