package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/due"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewDashboard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewDashboard() string {
	today := m.cal.Today(m.now())
	st := m.store.Snapshot()
	summary := due.Summarize(due.Partition(st.Habits, m.picker.Selected, m.cal))

	heading := dateStyle.Render(m.picker.Selected.Format("Monday, January 2"))
	if summary.Total() > 0 {
		heading += statusStyle.Render(fmt.Sprintf("  %d/%d done", summary.Completed, summary.Total()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		cli.WeekStrip(m.cal, m.picker, today),
		"",
		heading,
		m.list.View(),
	)
}

func (m Model) viewStatus() string {
	var lines []string
	if m.errMsg != "" {
		lines = append(lines, dangerStyle.Render("⚠ "+m.errMsg))
	}
	if m.warning != "" {
		lines = append(lines, warningStyle.Render(m.warning))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.habitToDelete != nil {
		name = m.habitToDelete.Name
	}
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q? This cannot be undone.", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
