package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
)

const headerHeight = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width-4, max(msg.Height-headerHeight, 4))
		return m, nil

	case changedMsg:
		m.sync()
		return m, m.waitForChange()

	case refreshMsg:
		return m, tea.Batch(m.run("", m.store.FetchHabits), m.tick())

	case opDoneMsg:
		m.sync()
		if msg.err != nil {
			m.status = ""
			m.errMsg = msg.err.Error()
		} else if msg.status != "" {
			m.status = msg.status
		}
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m.updateDashboard(msg)
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			m.picker.Select(m.cal.AddDays(m.picker.Selected, -1))
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.NextDay):
			m.picker.Select(m.cal.AddDays(m.picker.Selected, 1))
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.PrevWeek):
			m.picker.PrevWeek()
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.NextWeek):
			m.picker.NextWeek()
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.Today):
			m.picker.Select(m.cal.Today(m.now()))
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.run("Refreshed", m.store.FetchHabits)
		}

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Goal: "1", Repeat: "daily"}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.ProgressMsg:
		current, ok := m.store.Find(msg.Habit.ID)
		if !ok {
			return m, nil
		}
		if current.Progress+msg.Delta < 0 {
			return m, nil
		}
		ctx, store, delta := m.ctx, m.store, msg.Delta
		return m, func() tea.Msg {
			h, err := store.AddProgress(ctx, current, delta)
			if err != nil {
				return opDoneMsg{err: err}
			}
			return opDoneMsg{status: fmt.Sprintf("%s: %d/%d", h.Name, h.Progress, h.Goal)}
		}

	case habitlist.DeleteHabitMsg:
		h := msg.Habit
		m.habitToDelete = &h
		m.state = StateConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateDashboard
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateDashboard
		cmds = append(cmds, m.submitHabit())
	case huh.StateAborted:
		m.state = StateDashboard
	}
	return m, tea.Batch(cmds...)
}

// submitHabit adds the habit described by the form, starting on the selected
// day.
func (m Model) submitHabit() tea.Cmd {
	h, err := m.habitForm.habit(len(m.store.Snapshot().Habits))
	if err != nil {
		return func() tea.Msg { return opDoneMsg{err: err} }
	}
	h.StartDate = m.picker.Selected
	return m.run("Added "+h.Name, func(ctx context.Context) error {
		_, err := m.store.AddHabit(ctx, h)
		return err
	})
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.habitToDelete == nil {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		h := *m.habitToDelete
		m.habitToDelete = nil
		m.state = StateDashboard
		return m, m.run("Deleted "+h.Name, func(ctx context.Context) error {
			return m.store.DeleteHabit(ctx, h)
		})
	case key.Matches(keyMsg, m.keys.Cancel), key.Matches(keyMsg, m.keys.Quit):
		m.habitToDelete = nil
		m.state = StateDashboard
	}
	return m, nil
}
