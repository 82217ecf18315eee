package storage

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/habitual/internal/errors"
)

// ErrNotFound is returned by Get and Update when the document does not exist.
var ErrNotFound = apperrors.ErrNotFound

// Document is one stored record. Fields hold JSON-compatible values; numbers
// always come back as float64.
type Document struct {
	ID        string
	Path      string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore is a keyed collection of documents addressed by
// slash-separated paths such as "users/{uid}/habits/{hid}".
type DocumentStore interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	// Get returns the document at path or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)
	// Set creates or fully replaces the document at path.
	Set(ctx context.Context, path string, fields map[string]any) error
	// Update merges fields into an existing document. It returns ErrNotFound
	// if the document does not exist.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, path string) error
	// Query returns the documents directly inside collection in creation order.
	Query(ctx context.Context, collection string) ([]Document, error)
	// NewID returns a fresh identifier for a document in collection.
	NewID(ctx context.Context, collection string) (string, error)

	// Utils
	GetConfigPath() string
}
