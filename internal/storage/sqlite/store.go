package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/storage"
)

type Store struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

func (s *Store) Init(ctx context.Context) error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps seq allocation and read-modify-write updates serialized.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(db, migration.DialectSQLite)
	if _, err := runner.ApplyMigrations(func(msg string) { logger.Debug(msg, "store", "sqlite") }); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDB returns the underlying connection pool, nil before Init.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() migration.Dialect {
	return migration.DialectSQLite
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, path string) (storage.Document, error) {
	collection, id, err := storage.SplitDocument(path)
	if err != nil {
		return storage.Document{}, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT fields, created_at, updated_at FROM documents WHERE collection = ? AND id = ?",
		collection, id)
	doc, err := scanDocument(row, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Document{}, fmt.Errorf("%s: %w", path, storage.ErrNotFound)
	}
	return doc, err
}

func (s *Store) Set(ctx context.Context, path string, fields map[string]any) error {
	collection, id, err := storage.SplitDocument(path)
	if err != nil {
		return err
	}
	data, err := storage.MarshalFields(fields)
	if err != nil {
		return err
	}

	now := formatTime(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, seq, fields, created_at, updated_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents), ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			fields = excluded.fields,
			updated_at = excluded.updated_at
	`, collection, id, string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	collection, id, err := storage.SplitDocument(path)
	if err != nil {
		return err
	}
	if _, err := storage.MarshalFields(fields); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		"SELECT fields FROM documents WHERE collection = ? AND id = ?",
		collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", path, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	existing, err := storage.UnmarshalFields([]byte(raw))
	if err != nil {
		return err
	}
	for k, v := range fields {
		existing[k] = v
	}
	data, err := storage.MarshalFields(existing)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET fields = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(data), formatTime(s.now()), collection, id); err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, path string) error {
	collection, id, err := storage.SplitDocument(path)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string) ([]storage.Document, error) {
	if err := storage.ValidateCollection(collection); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fields, created_at, updated_at FROM documents WHERE collection = ? ORDER BY seq, id",
		collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []storage.Document{}
	for rows.Next() {
		var id, raw, created, updated string
		if err := rows.Scan(&id, &raw, &created, &updated); err != nil {
			return nil, err
		}
		doc, err := buildDocument(collection, id, raw, created, updated)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) NewID(ctx context.Context, collection string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := storage.ValidateCollection(collection); err != nil {
		return "", err
	}
	return uuid.New().String(), nil
}

func scanDocument(row *sql.Row, collection, id string) (storage.Document, error) {
	var raw, created, updated string
	if err := row.Scan(&raw, &created, &updated); err != nil {
		return storage.Document{}, err
	}
	return buildDocument(collection, id, raw, created, updated)
}

func buildDocument(collection, id, raw, created, updated string) (storage.Document, error) {
	fields, err := storage.UnmarshalFields([]byte(raw))
	if err != nil {
		return storage.Document{}, err
	}
	doc := storage.Document{
		ID:     id,
		Path:   storage.Join(collection, id),
		Fields: fields,
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		doc.UpdatedAt = t
	}
	return doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
