package habits

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

// recordingStore wraps an in-memory store, counts calls per operation,
// injects queued failures, and notices overlapping calls.
type recordingStore struct {
	inner storage.DocumentStore

	mu       sync.Mutex
	calls    map[string]int
	failures map[string][]error

	inFlight   int32
	overlapped atomic.Bool
}

func newRecordingStore(t *testing.T) *recordingStore {
	t.Helper()
	inner := storage.NewMemoryStore()
	require.NoError(t, inner.Init(context.Background()))
	return &recordingStore{
		inner:    inner,
		calls:    map[string]int{},
		failures: map[string][]error{},
	}
}

func (r *recordingStore) failNext(op string, errs ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = append(r.failures[op], errs...)
}

func (r *recordingStore) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *recordingStore) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *recordingStore) enter(op string) error {
	if atomic.AddInt32(&r.inFlight, 1) > 1 {
		r.overlapped.Store(true)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	if q := r.failures[op]; len(q) > 0 {
		r.failures[op] = q[1:]
		return q[0]
	}
	return nil
}

func (r *recordingStore) exit() {
	atomic.AddInt32(&r.inFlight, -1)
}

func (r *recordingStore) Init(ctx context.Context) error { return r.inner.Init(ctx) }
func (r *recordingStore) Close() error                   { return r.inner.Close() }
func (r *recordingStore) GetConfigPath() string          { return r.inner.GetConfigPath() }

func (r *recordingStore) Get(ctx context.Context, path string) (storage.Document, error) {
	defer r.exit()
	if err := r.enter("get"); err != nil {
		return storage.Document{}, err
	}
	return r.inner.Get(ctx, path)
}

func (r *recordingStore) Set(ctx context.Context, path string, fields map[string]any) error {
	defer r.exit()
	if err := r.enter("set"); err != nil {
		return err
	}
	return r.inner.Set(ctx, path, fields)
}

func (r *recordingStore) Update(ctx context.Context, path string, fields map[string]any) error {
	defer r.exit()
	if err := r.enter("update"); err != nil {
		return err
	}
	return r.inner.Update(ctx, path, fields)
}

func (r *recordingStore) Delete(ctx context.Context, path string) error {
	defer r.exit()
	if err := r.enter("delete"); err != nil {
		return err
	}
	return r.inner.Delete(ctx, path)
}

func (r *recordingStore) Query(ctx context.Context, collection string) ([]storage.Document, error) {
	defer r.exit()
	if err := r.enter("query"); err != nil {
		return nil, err
	}
	return r.inner.Query(ctx, collection)
}

func (r *recordingStore) NewID(ctx context.Context, collection string) (string, error) {
	defer r.exit()
	if err := r.enter("newid"); err != nil {
		return "", err
	}
	return r.inner.NewID(ctx, collection)
}

// fakeGate is a session gate with a fixed identity.
type fakeGate struct {
	mu         sync.Mutex
	identity   *session.Identity
	signOutErr error
	signOuts   int
}

func (g *fakeGate) CurrentIdentity(ctx context.Context) (session.Identity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity == nil {
		return session.Identity{}, false
	}
	return *g.identity, true
}

func (g *fakeGate) SignUp(ctx context.Context, name, email, password string) (session.Identity, error) {
	return session.Identity{}, nil
}

func (g *fakeGate) SignIn(ctx context.Context, email, password string) (session.Identity, error) {
	return session.Identity{}, nil
}

func (g *fakeGate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signOuts++
	if g.signOutErr != nil {
		return g.signOutErr
	}
	g.identity = nil
	return nil
}
