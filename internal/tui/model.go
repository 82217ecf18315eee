// Package tui is the interactive habit dashboard: a week strip to pick a day
// and the habits due on it.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/due"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/validation"
)

type SessionState int

const (
	StateDashboard SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

type HabitFormModel struct {
	Name   string
	Label  string
	Goal   string
	Unit   string
	Repeat string
	Weekly bool
}

// changedMsg reports that the habit store signalled a change.
type changedMsg struct{}

// refreshMsg fires on every refresh interval.
type refreshMsg struct{}

// opDoneMsg carries the outcome of a store operation started from the UI.
type opDoneMsg struct {
	status string
	err    error
}

type Model struct {
	ctx      context.Context
	store    *habits.Store
	cal      calendar.Calendar
	now      func() time.Time
	interval time.Duration

	picker        *calendar.Picker
	state         SessionState
	keys          KeyMap
	help          help.Model
	list          habitlist.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	habitToDelete *models.Habit
	status        string
	errMsg        string
	warning       string
	quitting      bool
	width         int
	height        int
}

// New opens the dashboard on today. Store operations run under ctx, which
// also stops the change listener.
func New(ctx context.Context, store *habits.Store, now func() time.Time, interval time.Duration) Model {
	if now == nil {
		now = time.Now
	}
	cal := store.Calendar()
	m := Model{
		ctx:      ctx,
		store:    store,
		cal:      cal,
		now:      now,
		interval: interval,
		picker:   calendar.NewPicker(cal, cal.Today(now())),
		state:    StateDashboard,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		list:     habitlist.New(80, 20),
	}
	m.sync()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.Increment, m.keys.Add}
	return append(keys, m.keys.Help, m.keys.Quit)
}

func (m Model) FullHelp() [][]key.Binding {
	dates := []key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.PrevWeek, m.keys.NextWeek, m.keys.Today}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	actions := []key.Binding{m.keys.Increment, m.keys.Decrement, m.keys.Add, m.keys.Delete, m.keys.Refresh}
	global := []key.Binding{m.keys.Help, m.keys.Quit}
	return [][]key.Binding{dates, navigation, actions, global}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.tick())
}

// Selected returns the day the dashboard shows.
func (m Model) Selected() time.Time {
	return m.picker.Selected
}

// sync rebuilds the list from the store's current snapshot.
func (m *Model) sync() {
	st := m.store.Snapshot()
	m.list.SetBuckets(due.Partition(st.Habits, m.picker.Selected, m.cal))
	m.errMsg = st.ErrorMessage

	result := validation.New().ValidateHabits(st.Habits)
	switch {
	case st.Skipped > 0:
		m.warning = fmt.Sprintf("⚠ %d habit record(s) could not be read", st.Skipped)
	case result.HasConflicts():
		m.warning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	default:
		m.warning = ""
	}
}

func (m Model) waitForChange() tea.Cmd {
	changed := m.store.Changed()
	done := m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-changed:
			return changedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m Model) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// run performs a store operation off the event loop.
func (m Model) run(status string, op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{status: status, err: op(ctx)}
	}
}
