package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and then runs the returned commands in turn,
// feeding each result back, until a command yields nothing. The command
// returned for a changedMsg only re-arms the change listener and would block
// until the next change, so the chain stops there.
func send(t *testing.T, m tea.Model, msg tea.Msg) Model {
	t.Helper()
	for i := 0; msg != nil; i++ {
		require.Less(t, i, 10, "command chain did not settle")
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if _, listening := msg.(changedMsg); cmd == nil || listening {
			break
		}
		msg = cmd()
	}
	return m.(Model)
}

func newDashboard(t *testing.T) (Model, *cli.Context) {
	t.Helper()
	ctx, _ := clitest.NewContext(t)
	clitest.SignUp(t, ctx)
	m := New(context.Background(), ctx.Habits, ctx.Now, time.Minute)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ctx
}

func TestDashboardShowsDueHabits(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	clitest.SignUp(t, ctx)
	clitest.AddHabit(t, ctx, "Water")

	m := New(context.Background(), ctx.Habits, ctx.Now, time.Minute)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Wednesday, May 15")
	assert.Contains(t, view, "May 2024")
	assert.Contains(t, view, "Water")
	assert.Contains(t, view, "0/1 done")
}

func TestDashboardDayNavigation(t *testing.T) {
	m, ctx := newDashboard(t)
	clitest.AddHabit(t, ctx, "Water")
	m = send(t, m, changedMsg{})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "2024-05-14", ctx.Calendar.FormatDate(m.Selected()))
	assert.Contains(t, m.View(), "Nothing due on this day.")

	m = send(t, m, runes("]"))
	assert.Equal(t, "2024-05-21", ctx.Calendar.FormatDate(m.Selected()))
	assert.Contains(t, m.View(), "Water")

	m = send(t, m, runes("t"))
	assert.Equal(t, "2024-05-15", ctx.Calendar.FormatDate(m.Selected()))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "2024-05-16", ctx.Calendar.FormatDate(m.Selected()))
}

func TestDashboardLogsProgress(t *testing.T) {
	m, ctx := newDashboard(t)
	h := clitest.AddHabit(t, ctx, "Water")
	m = send(t, m, changedMsg{})

	m = send(t, m, runes("+"))
	m = send(t, m, runes("+"))
	got, ok := ctx.Habits.Find(h.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.Progress)
	assert.Contains(t, m.View(), "Water: 2/10")

	m = send(t, m, runes("-"))
	got, _ = ctx.Habits.Find(h.ID)
	assert.Equal(t, 1, got.Progress)
}

func TestDashboardCountsQuickPresses(t *testing.T) {
	m, ctx := newDashboard(t)
	h := clitest.AddHabit(t, ctx, "Water")
	m = send(t, m, changedMsg{})

	press := habitlist.ProgressMsg{Habit: h, Delta: 1}
	m1, first := m.Update(press)
	_, second := m1.Update(press)
	require.NotNil(t, first)
	require.NotNil(t, second)

	var wg sync.WaitGroup
	for _, cmd := range []tea.Cmd{first, second} {
		wg.Add(1)
		go func(cmd tea.Cmd) {
			defer wg.Done()
			msg := cmd()
			done, ok := msg.(opDoneMsg)
			if assert.True(t, ok, "got %T", msg) {
				assert.NoError(t, done.err)
			}
		}(cmd)
	}
	wg.Wait()

	got, ok := ctx.Habits.Find(h.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.Progress)
}

func TestDashboardDecrementStopsAtZero(t *testing.T) {
	m, ctx := newDashboard(t)
	h := clitest.AddHabit(t, ctx, "Water")
	m = send(t, m, changedMsg{})

	_, cmd := m.Update(runes("-"))
	assert.Nil(t, cmd)
	got, _ := ctx.Habits.Find(h.ID)
	assert.Equal(t, 0, got.Progress)
}

func TestDashboardDeleteConfirmation(t *testing.T) {
	m, ctx := newDashboard(t)
	clitest.AddHabit(t, ctx, "Water")
	m = send(t, m, changedMsg{})

	m = send(t, m, runes("x"))
	require.Equal(t, StateConfirmDelete, m.state)
	assert.Contains(t, m.View(), `Delete "Water"?`)

	m = send(t, m, runes("n"))
	assert.Equal(t, StateDashboard, m.state)
	assert.Len(t, ctx.Habits.Snapshot().Habits, 1)

	m = send(t, m, runes("x"))
	m = send(t, m, runes("y"))
	assert.Equal(t, StateDashboard, m.state)
	assert.Empty(t, ctx.Habits.Snapshot().Habits)
	assert.Contains(t, m.View(), "Deleted Water")
}

func TestDashboardPicksUpExternalChanges(t *testing.T) {
	m, ctx := newDashboard(t)
	assert.NotContains(t, m.View(), "Stretch")

	clitest.AddHabit(t, ctx, "Stretch")
	next, cmd := m.Update(changedMsg{})
	assert.NotNil(t, cmd, "listener must be re-armed")
	assert.Contains(t, next.View(), "Stretch")
}

func TestDashboardReportsFailures(t *testing.T) {
	m, _ := newDashboard(t)
	m = send(t, m, opDoneMsg{err: assert.AnError})
	assert.Contains(t, m.View(), assert.AnError.Error())
}

func TestSubmitHabitStartsOnSelectedDay(t *testing.T) {
	m, ctx := newDashboard(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m.habitForm = &HabitFormModel{Name: " Read ", Label: "📚", Goal: "20", Unit: "pages", Repeat: "custom:mon,fri", Weekly: true}
	m = send(t, m, m.submitHabit()())

	habits := ctx.Habits.Snapshot().Habits
	require.Len(t, habits, 1)
	h := habits[0]
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, 20, h.Goal)
	assert.True(t, h.IsWeekly)
	assert.Equal(t, "2024-05-16", ctx.Calendar.FormatDate(h.StartDate))
	assert.Equal(t, models.CustomWeekdays{Days: models.NewWeekdaySet(models.Monday, models.Friday)}, h.Rule)
	assert.Contains(t, m.View(), "Added Read")
}

func TestSubmitHabitRejectsBadForm(t *testing.T) {
	m, ctx := newDashboard(t)
	m.habitForm = &HabitFormModel{Name: "Read", Goal: "lots", Repeat: "daily"}
	m = send(t, m, m.submitHabit()())

	assert.Empty(t, ctx.Habits.Snapshot().Habits)
	assert.Contains(t, m.View(), "goal must be a whole number")
}

func TestAddKeyOpensForm(t *testing.T) {
	m, _ := newDashboard(t)
	_, cmd := m.Update(runes("a"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, habitlist.AddHabitMsg{}, msg)

	next, _ := m.Update(msg)
	assert.Equal(t, StateAddHabit, next.(Model).state)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateDashboard, next.(Model).state)
}

func TestQuit(t *testing.T) {
	m, _ := newDashboard(t)
	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}
