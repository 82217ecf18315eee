// Package habits keeps the signed-in user's habits in memory and in step with
// the document store.
//
// Every operation holds the store's lock for its whole duration, remote calls
// included, so operations never interleave. A remote write always finishes
// before the cache is changed, and a failed write leaves the cache as it was.
package habits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/validation"
)

// Options configures a Store.
type Options struct {
	Calendar calendar.Calendar
	// FetchRetries is the number of attempts for each fetch; values below 1
	// mean a single attempt.
	FetchRetries int
	RetryDelay   time.Duration
}

// State is a read-only copy of the store's contents.
type State struct {
	User          *models.User
	Habits        []models.Habit
	Authenticated bool
	// ErrorMessage is the last remote failure shown to the user, cleared by
	// the next successful operation.
	ErrorMessage string
	// Skipped counts malformed records dropped by the last fetch.
	Skipped int
}

func (st State) clone() State {
	out := st
	if st.User != nil {
		u := *st.User
		out.User = &u
	}
	if st.Habits != nil {
		out.Habits = append([]models.Habit(nil), st.Habits...)
	}
	return out
}

// Store is the habit cache for one user session.
type Store struct {
	docs      storage.DocumentStore
	gate      session.Gate
	cal       calendar.Calendar
	validator *validation.Validator
	attempts  uint
	delay     time.Duration

	mu      sync.Mutex
	state   State
	changed chan struct{}
}

func New(docs storage.DocumentStore, gate session.Gate, opts Options) *Store {
	attempts := uint(1)
	if opts.FetchRetries > 1 {
		attempts = uint(opts.FetchRetries)
	}
	if opts.Calendar.Location == nil {
		opts.Calendar = calendar.Default()
	}
	return &Store{
		docs:      docs,
		gate:      gate,
		cal:       opts.Calendar,
		validator: validation.New(),
		attempts:  attempts,
		delay:     opts.RetryDelay,
		changed:   make(chan struct{}, 1),
	}
}

// Calendar returns the calendar used to encode start dates.
func (s *Store) Calendar() calendar.Calendar {
	return s.cal
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Changed is signalled after the state changes. Signals coalesce: a reader
// that falls behind sees one pending signal, then reads a fresh Snapshot.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

// Find returns the cached habit with the given id.
func (s *Store) Find(id string) (models.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.state.Habits[i], true
	}
	return models.Habit{}, false
}

func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Store) indexOf(id string) int {
	for i, h := range s.state.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) clear() {
	s.state = State{}
	s.notify()
}

// fetchFailed records a failed fetch. Fetches often run on passive triggers
// such as a screen load or a timer, so the failure is kept in
// State.ErrorMessage and only a cancelled ctx is returned.
func (s *Store) fetchFailed(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.remoteFailed(err)
	return nil
}

// remoteFailed records err as the user-visible message and returns it.
func (s *Store) remoteFailed(err error) error {
	s.state.ErrorMessage = err.Error()
	s.notify()
	logger.Error("Document store request failed", "error", err)
	return err
}

func (s *Store) uid() (string, error) {
	if !s.state.Authenticated || s.state.User == nil {
		return "", apperrors.ErrNotAuthenticated
	}
	return s.state.User.ID, nil
}

func (s *Store) retry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) &&
				!errors.Is(err, storage.ErrNotFound) &&
				!errors.Is(err, storage.ErrInvalidPath) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Retrying fetch", "op", op, "attempt", n+1, "error", err)
		}),
	)
}

// FetchUser loads the signed-in user and their habits. With nobody signed in
// it clears the store. A remote failure is recorded in State.ErrorMessage
// rather than returned; the error result only reports cancellation.
func (s *Store) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.gate.CurrentIdentity(ctx)
	if !ok {
		logger.Debug("No signed-in user")
		s.clear()
		return nil
	}

	path := storage.UserPath(id.UID)
	var doc storage.Document
	err := s.retry(ctx, "get user", func() error {
		var err error
		doc, err = s.docs.Get(ctx, path)
		return err
	})

	var user models.User
	switch {
	case err == nil:
		user = DecodeUser(id.UID, doc)
		if user.Email == "" {
			user.Email = id.Email
		}
	case errors.Is(err, storage.ErrNotFound):
		logger.Warn("User profile missing; using session identity", "uid", id.UID)
		user = models.User{ID: id.UID, Email: id.Email}
	default:
		return s.fetchFailed(ctx, apperrors.Remote("get", path, err))
	}

	s.state.User = &user
	s.state.Authenticated = true
	s.notify()

	return s.fetchHabits(ctx)
}

// FetchHabits replaces the cache with the user's stored habits. Records that
// fail to decode are skipped and counted. A failed query leaves the cache
// unchanged and is recorded in State.ErrorMessage, not returned. Signed out,
// it does nothing.
func (s *Store) FetchHabits(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchHabits(ctx)
}

func (s *Store) fetchHabits(ctx context.Context) error {
	uid, err := s.uid()
	if err != nil {
		return nil
	}

	collection := storage.HabitsPath(uid)
	var docs []storage.Document
	err = s.retry(ctx, "query habits", func() error {
		var err error
		docs, err = s.docs.Query(ctx, collection)
		return err
	})
	if err != nil {
		return s.fetchFailed(ctx, apperrors.Remote("query", collection, err))
	}

	habits := make([]models.Habit, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		h, err := DecodeHabit(doc, s.cal)
		if err != nil {
			skipped++
			logger.Warn("Skipping malformed habit", "path", doc.Path, "error", err)
			continue
		}
		habits = append(habits, h)
	}

	s.state.Habits = habits
	s.state.Skipped = skipped
	s.state.ErrorMessage = ""
	s.notify()
	logger.Debug("Fetched habits", "count", len(habits), "skipped", skipped)
	return nil
}

func (s *Store) validate(h models.Habit) error {
	result := s.validator.ValidateHabit(h)
	return result.Err()
}

// AddHabit stores h under a new id and then refetches the whole collection.
// The returned habit carries the assigned id. If the write succeeds but the
// refetch fails, the habit is still returned and the failure is only
// recorded in the state.
func (s *Store) AddHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(h); err != nil {
		return models.Habit{}, err
	}
	uid, err := s.uid()
	if err != nil {
		return models.Habit{}, err
	}

	collection := storage.HabitsPath(uid)
	id, err := s.docs.NewID(ctx, collection)
	if err != nil {
		return models.Habit{}, s.remoteFailed(apperrors.Remote("new id", collection, err))
	}
	h.ID = id
	h.StartDate = s.cal.StartOfDay(h.StartDate)

	path := storage.HabitPath(uid, id)
	if err := s.docs.Set(ctx, path, EncodeHabit(h, s.cal)); err != nil {
		return models.Habit{}, s.remoteFailed(apperrors.Remote("set", path, err))
	}
	logger.Info("Habit added", "id", id)

	// A failed refetch is recorded in the state; the write itself succeeded.
	_ = s.fetchHabits(ctx)
	return h, nil
}

// UpdateHabit replaces the stored habit and then its cache entry.
func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !h.HasID() {
		return apperrors.ErrMissingIdentifier
	}
	if err := s.validate(h); err != nil {
		return err
	}
	uid, err := s.uid()
	if err != nil {
		return err
	}

	h.StartDate = s.cal.StartOfDay(h.StartDate)
	path := storage.HabitPath(uid, h.ID)
	if err := s.docs.Set(ctx, path, EncodeHabit(h, s.cal)); err != nil {
		return s.remoteFailed(apperrors.Remote("set", path, err))
	}

	if i := s.indexOf(h.ID); i >= 0 {
		s.state.Habits[i] = h
	}
	s.state.ErrorMessage = ""
	s.notify()
	logger.Debug("Habit updated", "id", h.ID)
	return nil
}

// DeleteHabit removes the habit remotely and then from the cache.
func (s *Store) DeleteHabit(ctx context.Context, h models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !h.HasID() {
		return apperrors.ErrMissingIdentifier
	}
	uid, err := s.uid()
	if err != nil {
		return err
	}

	path := storage.HabitPath(uid, h.ID)
	if err := s.docs.Delete(ctx, path); err != nil {
		return s.remoteFailed(apperrors.Remote("delete", path, err))
	}

	if i := s.indexOf(h.ID); i >= 0 {
		s.state.Habits = append(s.state.Habits[:i:i], s.state.Habits[i+1:]...)
	}
	s.state.ErrorMessage = ""
	s.notify()
	logger.Info("Habit deleted", "id", h.ID)
	return nil
}

// UpdateProgress patches only the progress field, remotely and then in the
// cache.
func (s *Store) UpdateProgress(ctx context.Context, h models.Habit, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !h.HasID() {
		return apperrors.ErrMissingIdentifier
	}
	return s.setProgress(ctx, h.ID, value)
}

// AddProgress adjusts the cached progress of h by delta and stores the
// result. The current value is read under the store lock, so adjustments
// made in quick succession all count. It returns the updated habit.
func (s *Store) AddProgress(ctx context.Context, h models.Habit, delta int) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !h.HasID() {
		return models.Habit{}, apperrors.ErrMissingIdentifier
	}
	i := s.indexOf(h.ID)
	if i < 0 {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, apperrors.ErrNotFound)
	}
	if err := s.setProgress(ctx, h.ID, s.state.Habits[i].Progress+delta); err != nil {
		return models.Habit{}, err
	}
	return s.state.Habits[i], nil
}

// setProgress writes value for the habit id. The caller holds s.mu.
func (s *Store) setProgress(ctx context.Context, id string, value int) error {
	if err := s.validator.ValidateProgress(value); err != nil {
		return err
	}
	uid, err := s.uid()
	if err != nil {
		return err
	}

	path := storage.HabitPath(uid, id)
	if err := s.docs.Update(ctx, path, map[string]any{constants.FieldProgress: value}); err != nil {
		return s.remoteFailed(apperrors.Remote("update", path, err))
	}

	if i := s.indexOf(id); i >= 0 {
		s.state.Habits[i].Progress = value
	}
	s.state.ErrorMessage = ""
	s.notify()
	logger.Debug("Progress logged", "id", id, "progress", value)
	return nil
}

// SignOut ends the session and clears the store. The store is cleared even
// when the gate fails; that failure is returned afterwards.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.gate.SignOut(ctx)
	s.clear()
	if err != nil {
		logger.Warn("Sign out failed; local state cleared", "error", err)
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Refresh refetches habits every interval until ctx is done. Failures are
// recorded in the state like any other fetch.
func (s *Store) Refresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.FetchHabits(ctx)
		}
	}
}
