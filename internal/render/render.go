// Package render turns reports into rows and terminal tables. The CLI prints
// the tables; the dashboard feeds the same rows to bubbles tables.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/models"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
)

// Grid is a header row plus data rows, all as display strings.
type Grid struct {
	Headers []string
	Rows    [][]string
}

// Table renders g with a rounded border.
func Table(g Grid) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(g.Headers...).
		Rows(g.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Degraded is the banner shown over a view built from an unreadable store.
func Degraded() string {
	return degradedStyle.Render("⚠ submission store unavailable, showing an empty report")
}

// CompletionGrid is the store × task board for one day.
func CompletionGrid(cat catalog.Catalog, report models.CompletionReport) Grid {
	tasks := cat.Tasks.Tasks()
	g := Grid{Headers: []string{"Store"}}
	for _, t := range tasks {
		g.Headers = append(g.Headers, t.Name)
	}
	for _, s := range cat.Stores.Real() {
		row := []string{s.Name}
		for _, t := range tasks {
			row = append(row, completionCell(report.Stores[s.ID][t.ID]))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func completionCell(c models.TaskCompletion) string {
	if !c.Completed {
		return "✗"
	}
	return "✓ " + strings.Join(c.Completers, ", ")
}

// PenaltyGrid lists the day's missing-task penalties, worst store first.
func PenaltyGrid(cat catalog.Catalog, report models.PenaltyReport) Grid {
	g := Grid{Headers: []string{"Store", "Missing", "Tasks", "Penalty"}}
	for _, p := range report.Stores {
		g.Rows = append(g.Rows, []string{
			StoreName(cat, p.StoreID),
			fmt.Sprint(p.MissingCount),
			TaskNames(cat, p.MissingTasks),
			fmt.Sprintf("-%d", p.PenaltyPoints),
		})
	}
	return g
}

func HistoryGrid(cat catalog.Catalog, days []models.DayPenalty) Grid {
	g := Grid{Headers: []string{"Date", "Store", "Missing", "Tasks"}}
	for _, d := range days {
		g.Rows = append(g.Rows, []string{d.Date, StoreName(cat, d.StoreID), fmt.Sprint(d.MissingCount), TaskNames(cat, d.MissingTasks)})
	}
	return g
}

func RankingGrid(cat catalog.Catalog, ranking []models.StoreRanking) Grid {
	g := Grid{Headers: []string{"#", "Store", "Total missing", "Days"}}
	for i, r := range ranking {
		g.Rows = append(g.Rows, []string{fmt.Sprint(i + 1), StoreName(cat, r.StoreID), fmt.Sprint(r.TotalMissing), fmt.Sprint(r.Days)})
	}
	return g
}

// LogGrid lists submissions in the order given. The last column is the id.
func LogGrid(cat catalog.Catalog, subs []models.Submission) Grid {
	g := Grid{Headers: []string{"Time", "Store", "Employee", "Task", "Status", "Points", "Photo", "ID"}}
	for _, s := range subs {
		g.Rows = append(g.Rows, []string{
			formatTime(s),
			StoreName(cat, s.StoreID),
			s.EmployeeName,
			TaskName(cat, s.TaskID),
			s.Status,
			fmt.Sprint(s.Points),
			evidenceLabel(s),
			s.ID,
		})
	}
	return g
}

func TrailGrid(trail []models.Adjustment) Grid {
	g := Grid{Headers: []string{"When", "Action", "Delta", "Status", "Actor", "Note", "ID"}}
	for _, a := range trail {
		delta := fmt.Sprint(a.DeltaPoints)
		if rule, ok := a.Action.Rule(); ok && rule.Reset {
			delta = "reset"
		}
		g.Rows = append(g.Rows, []string{
			a.CreatedAt.Local().Format(constants.TimestampFormat),
			string(a.Action),
			delta,
			a.NewStatus,
			a.Actor,
			a.Note,
			a.ID,
		})
	}
	return g
}

// Summary renders the headline counters on one line.
func Summary(sum models.Summary) string {
	return fmt.Sprintf("%s  reports %d  anomalies %d  active stores %d",
		Title(sum.Date), sum.Reports, sum.Anomalies, sum.ActiveStores)
}

func formatTime(s models.Submission) string {
	if s.Timestamp.IsZero() {
		return s.Date
	}
	return s.Timestamp.Format(constants.TimestampFormat)
}

func evidenceLabel(s models.Submission) string {
	switch {
	case s.Evidence == "":
		return ""
	case s.EvidenceCheck == models.EvidenceVerifiedToday:
		return "📷 ✓"
	case s.EvidenceCheck == models.EvidenceUnverifiable:
		return "📷 ?"
	default:
		return "📷"
	}
}

func StoreName(cat catalog.Catalog, id string) string {
	if s, ok := cat.Stores.Get(id); ok {
		return s.Name
	}
	return id
}

func TaskName(cat catalog.Catalog, id string) string {
	if t, ok := cat.Tasks.Get(id); ok {
		return t.Name
	}
	return id
}

func TaskNames(cat catalog.Catalog, ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = TaskName(cat, id)
	}
	return strings.Join(names, ", ")
}
