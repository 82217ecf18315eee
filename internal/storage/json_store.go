package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
)

type record struct {
	Seq       int64          `json:"seq"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type jsonFile struct {
	Version   int                           `json:"version"`
	Seq       int64                         `json:"seq"`
	Documents map[string]map[string]*record `json:"documents"`
}

// JSONStore keeps documents in memory. With a non-empty path every write is
// also persisted to a JSON file; with an empty path it is purely in-process.
type JSONStore struct {
	path string

	mu   sync.RWMutex
	data *jsonFile
	now  func() time.Time
}

// NewJSONStore returns a store persisted at configPath.
func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
		data: emptyFile(),
		now:  time.Now,
	}
}

// NewMemoryStore returns a store that is never written to disk.
func NewMemoryStore() *JSONStore {
	return NewJSONStore("")
}

func emptyFile() *jsonFile {
	return &jsonFile{Version: 1, Documents: make(map[string]map[string]*record)}
}

// Init loads the backing file, creating it if it does not exist yet.
func (s *JSONStore) Init(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = emptyFile()
			return s.save()
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	f := emptyFile()
	if err := json.Unmarshal(raw, f); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if f.Documents == nil {
		f.Documents = make(map[string]map[string]*record)
	}
	s.data = f
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	if s.path == "" {
		return constants.StoreMemory
	}
	return s.path
}

// save must be called with mu held.
func (s *JSONStore) save() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Get(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	collection, id, err := SplitDocument(path)
	if err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data.Documents[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return toDocument(collection, id, rec)
}

func (s *JSONStore) Set(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := SplitDocument(path)
	if err != nil {
		return err
	}
	norm, err := normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	docs := s.data.Documents[collection]
	if docs == nil {
		docs = make(map[string]*record)
		s.data.Documents[collection] = docs
	}
	if rec, ok := docs[id]; ok {
		rec.Fields = norm
		rec.UpdatedAt = now
	} else {
		s.data.Seq++
		docs[id] = &record{Seq: s.data.Seq, Fields: norm, CreatedAt: now, UpdatedAt: now}
	}
	return s.save()
}

func (s *JSONStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := SplitDocument(path)
	if err != nil {
		return err
	}
	norm, err := normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data.Documents[collection][id]
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	merged := make(map[string]any, len(rec.Fields)+len(norm))
	for k, v := range rec.Fields {
		merged[k] = v
	}
	for k, v := range norm {
		merged[k] = v
	}
	rec.Fields = merged
	rec.UpdatedAt = s.now().UTC()
	return s.save()
}

func (s *JSONStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := SplitDocument(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.data.Documents[collection]
	if _, ok := docs[id]; !ok {
		return nil
	}
	delete(docs, id)
	if len(docs) == 0 {
		delete(s.data.Documents, collection)
	}
	return s.save()
}

func (s *JSONStore) Query(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.data.Documents[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := docs[ids[i]], docs[ids[j]]
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return ids[i] < ids[j]
	})

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := toDocument(collection, id, docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *JSONStore) NewID(ctx context.Context, collection string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateCollection(collection); err != nil {
		return "", err
	}
	return uuid.New().String(), nil
}

// toDocument copies rec so callers cannot mutate stored state.
func toDocument(collection, id string, rec *record) (Document, error) {
	fields, err := normalize(rec.Fields)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ID:        id,
		Path:      Join(collection, id),
		Fields:    fields,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}
