package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/storeduty/internal/render"
)

var tabTitles = []string{"Board", "Penalties", "Log"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	if m.state == StateConfirmRevoke {
		content = m.viewConfirmRevoke()
	} else {
		content = docStyle.Render(m.tables[m.state].View())
	}

	parts := []string{m.viewTabs(), render.Summary(m.summary.Summary)}
	if m.degraded {
		parts = append(parts, render.Degraded())
	}
	parts = append(parts, content)
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, warningStyle.Render(m.status))
		} else {
			parts = append(parts, successStyle.Render(m.status))
		}
	}
	parts = append(parts, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	active := m.state
	if active == StateConfirmRevoke {
		active = StateLog
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmRevoke() string {
	return lipgloss.Place(m.width, max(m.height-6, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Revoke every deduction on "+m.pendingID+"?"),
			"Points return to 0 and the status becomes corrected.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
