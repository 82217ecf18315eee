package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/due"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/recurrence"
)

type AddHabitMsg struct{}

type DeleteHabitMsg struct {
	Habit models.Habit
}

// ProgressMsg asks for the habit's progress to move by Delta.
type ProgressMsg struct {
	Habit models.Habit
	Delta int
}

type Item struct {
	Habit  models.Habit
	Weekly bool
}

func (i Item) Title() string {
	mark := "○ "
	if i.Habit.Done() {
		mark = "✓ "
	}
	name := i.Habit.Name
	if i.Habit.Label != "" {
		name = i.Habit.Label + " " + name
	}
	return mark + name
}

func (i Item) Description() string {
	amount := fmt.Sprintf("%d/%d", i.Habit.Progress, i.Habit.Goal)
	if i.Habit.Unit != "" {
		amount += " " + i.Habit.Unit
	}
	bucket := recurrence.DescribeRule(i.Habit.HabitRule())
	if i.Weekly {
		bucket = "this week"
	}
	return fmt.Sprintf("%s %s %3d%% · %s", cli.Bar(i.Habit), amount, i.Habit.CompletionPercent(), bucket)
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add       key.Binding
	Increment key.Binding
	Decrement key.Binding
	Delete    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "log one"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "undo one"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Due"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the dashboard
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Increment, keys.Decrement, keys.Add, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Increment, keys.Decrement, keys.Add, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

// SetBuckets lists the daily habits followed by the weekly ones.
func (m *Model) SetBuckets(b due.Buckets) {
	items := make([]list.Item, 0, b.Len())
	for _, h := range b.Daily {
		items = append(items, Item{Habit: h})
	}
	for _, h := range b.Weekly {
		items = append(items, Item{Habit: h, Weekly: true})
	}
	m.list.SetItems(items)
}

// Selected returns the habit under the cursor.
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Habit, ok
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Increment):
			if h, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ProgressMsg{Habit: h, Delta: 1} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Decrement):
			if h, ok := m.Selected(); ok && h.Progress > 0 {
				return m, func() tea.Msg { return ProgressMsg{Habit: h, Delta: -1} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if h, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{Habit: h} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  Nothing due on this day.\n  Press 'a' to add a habit."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
