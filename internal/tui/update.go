package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/storeduty/internal/models"
)

// auditedMsg reports the outcome of an audit started from the log tab.
type auditedMsg struct {
	id     string
	action models.Action
	sub    models.Submission
	err    error
}

func (m Model) auditCmd(id string, action models.Action) tea.Cmd {
	svc, actor := m.svc, m.actor
	return func() tea.Msg {
		sub, _, err := svc.Audit(context.Background(), id, action, actor, "")
		return auditedMsg{id: id, action: action, sub: sub, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 10; h > 3 {
			for i := range m.tables {
				m.tables[i].SetHeight(h)
			}
		}
		return m, nil

	case auditedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Audit of %s failed: %v", msg.id, msg.err)
			m.statusErr = true
			return m, nil
		}
		rule, _ := msg.action.Rule()
		m.status = fmt.Sprintf("✓ %s: %s is now %s (%d points)", rule.Label, msg.id, msg.sub.Status, msg.sub.Points)
		m.statusErr = false
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.state == StateConfirmRevoke {
			return m.updateConfirmRevoke(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			m.status = ""
			return m, nil
		}

		if m.state == StateLog {
			if action, ok := m.actionFor(msg); ok {
				id, selected := m.selectedSubmission()
				if !selected {
					m.status = "No submission selected"
					m.statusErr = true
					return m, nil
				}
				if action == models.ActionRevokeToZero {
					m.pendingID = id
					m.state = StateConfirmRevoke
					return m, nil
				}
				return m, m.auditCmd(id, action)
			}
		}
	}

	if m.state >= tabCount {
		return m, nil
	}
	var cmd tea.Cmd
	m.tables[m.state], cmd = m.tables[m.state].Update(msg)
	return m, cmd
}

func (m Model) actionFor(msg tea.KeyMsg) (models.Action, bool) {
	switch {
	case key.Matches(msg, m.keys.Approve):
		return models.ActionApprove, true
	case key.Matches(msg, m.keys.Minor):
		return models.ActionMinorFault, true
	case key.Matches(msg, m.keys.Major):
		return models.ActionMajorFault, true
	case key.Matches(msg, m.keys.Revoke):
		return models.ActionRevokeToZero, true
	}
	return "", false
}

func (m Model) updateConfirmRevoke(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.pendingID
		m.pendingID = ""
		m.state = StateLog
		return m, m.auditCmd(id, models.ActionRevokeToZero)
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.pendingID = ""
		m.state = StateLog
	}
	return m, nil
}
