package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/storeduty/internal/render"
	"github.com/julianstephens/storeduty/internal/service"
)

type SessionState int

const (
	StateBoard SessionState = iota
	StatePenalties
	StateLog
	StateConfirmRevoke
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

const (
	maxColumnWidth = 40
	defaultHeight  = 12
)

type Model struct {
	svc   *service.Service
	actor string

	state    SessionState
	keys     KeyMap
	help     help.Model
	tables   [tabCount]table.Model
	summary  service.SummaryView
	degraded bool

	status    string
	statusErr bool
	pendingID string

	quitting bool
	width    int
	height   int
}

// NewModel builds the dashboard over svc. actor is recorded on every audit
// made from the log tab.
func NewModel(svc *service.Service, actor string) Model {
	m := Model{
		svc:   svc,
		actor: actor,
		state: StateBoard,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	for i := range m.tables {
		m.tables[i] = table.New(table.WithFocused(true), table.WithHeight(defaultHeight))
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads every tab from the service.
func (m *Model) refresh() {
	ctx := context.Background()
	cat := m.svc.Catalog()
	today := m.svc.Today()

	board := m.svc.Board(ctx, today)
	logView := m.svc.Submissions(ctx, today)
	m.summary = m.svc.Summary(ctx, today)
	m.degraded = board.Degraded || logView.Degraded || m.summary.Degraded

	setGrid(&m.tables[StateBoard], render.CompletionGrid(cat, board.Completion))
	setGrid(&m.tables[StatePenalties], render.PenaltyGrid(cat, board.Penalties))
	setGrid(&m.tables[StateLog], render.LogGrid(cat, logView.Submissions))
}

// setGrid swaps the table's columns and rows. Rows are cleared first so the
// table never renders old rows against new columns.
func setGrid(t *table.Model, g render.Grid) {
	widths := make([]int, len(g.Headers))
	for i, h := range g.Headers {
		widths[i] = lipgloss.Width(h)
	}
	rows := make([]table.Row, 0, len(g.Rows))
	for _, r := range g.Rows {
		for i, cell := range r {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
		rows = append(rows, table.Row(r))
	}

	cols := make([]table.Column, len(g.Headers))
	for i, h := range g.Headers {
		cols[i] = table.Column{Title: h, Width: min(widths[i]+1, maxColumnWidth)}
	}

	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
}

// selectedSubmission returns the id in the last column of the highlighted
// log row.
func (m Model) selectedSubmission() (string, bool) {
	row := m.tables[StateLog].SelectedRow()
	if len(row) == 0 {
		return "", false
	}
	return row[len(row)-1], true
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateLog:
		keys = append(keys, m.keys.Minor, m.keys.Major, m.keys.Revoke)
	case StateConfirmRevoke:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == StateLog {
		actions = []key.Binding{m.keys.Approve, m.keys.Minor, m.keys.Major, m.keys.Revoke}
	}
	return [][]key.Binding{global, navigation, actions}
}
