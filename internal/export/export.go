// Package export writes reconciliation reports to .xlsx workbooks.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/models"
)

// Sheet names, in workbook order.
const (
	SheetCompletion = "completion"
	SheetPenalties  = "penalties"
	SheetHistory    = "history"
	SheetRanking    = "ranking"
	SheetLog        = "log"
)

// Report is everything one export contains.
type Report struct {
	Completion  models.CompletionReport
	Penalties   models.PenaltyReport
	History     []models.DayPenalty
	Ranking     []models.StoreRanking
	Submissions []models.Submission
}

// WriteWorkbook saves r to path, one sheet per view. Stores and tasks are
// labelled with their catalog names.
func WriteWorkbook(path string, cat catalog.Catalog, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetCompletion); err != nil {
		return err
	}
	for _, name := range []string{SheetPenalties, SheetHistory, SheetRanking, SheetLog} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	writers := []struct {
		sheet string
		rows  [][]interface{}
	}{
		{SheetCompletion, completionRows(cat, r.Completion)},
		{SheetPenalties, penaltyRows(cat, r.Penalties)},
		{SheetHistory, historyRows(cat, r.History)},
		{SheetRanking, rankingRows(cat, r.Ranking)},
		{SheetLog, logRows(cat, r.Submissions)},
	}
	for _, w := range writers {
		if err := writeRows(f, w.sheet, w.rows); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", w.sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func completionRows(cat catalog.Catalog, report models.CompletionReport) [][]interface{} {
	tasks := cat.Tasks.Tasks()
	header := []interface{}{"date", "store"}
	for _, t := range tasks {
		header = append(header, t.Name)
	}
	rows := [][]interface{}{header}

	for _, store := range cat.Stores.Real() {
		row := []interface{}{report.Date, store.Name}
		for _, t := range tasks {
			row = append(row, completionCell(report.Stores[store.ID][t.ID]))
		}
		rows = append(rows, row)
	}
	return rows
}

func completionCell(c models.TaskCompletion) string {
	if !c.Completed {
		return ""
	}
	return "✓ " + strings.Join(c.Completers, ", ")
}

func penaltyRows(cat catalog.Catalog, report models.PenaltyReport) [][]interface{} {
	rows := [][]interface{}{{"date", "store", "missing_count", "missing_tasks", "penalty_points"}}
	for _, p := range report.Stores {
		rows = append(rows, []interface{}{report.Date, storeName(cat, p.StoreID), p.MissingCount, taskNames(cat, p.MissingTasks), p.PenaltyPoints})
	}
	return rows
}

func historyRows(cat catalog.Catalog, history []models.DayPenalty) [][]interface{} {
	rows := [][]interface{}{{"date", "store", "missing_count", "missing_tasks"}}
	for _, d := range history {
		rows = append(rows, []interface{}{d.Date, storeName(cat, d.StoreID), d.MissingCount, taskNames(cat, d.MissingTasks)})
	}
	return rows
}

func rankingRows(cat catalog.Catalog, ranking []models.StoreRanking) [][]interface{} {
	rows := [][]interface{}{{"rank", "store", "total_missing", "days"}}
	for i, r := range ranking {
		rows = append(rows, []interface{}{i + 1, storeName(cat, r.StoreID), r.TotalMissing, r.Days})
	}
	return rows
}

func logRows(cat catalog.Catalog, subs []models.Submission) [][]interface{} {
	rows := [][]interface{}{{"timestamp", "store", "employee", "task", "status", "points", "evidence_check", "id"}}
	for _, s := range subs {
		ts := ""
		if !s.Timestamp.IsZero() {
			ts = s.Timestamp.Format(constants.TimestampFormat)
		}
		rows = append(rows, []interface{}{ts, storeName(cat, s.StoreID), s.EmployeeName, taskName(cat, s.TaskID), s.Status, s.Points, string(s.EvidenceCheck), s.ID})
	}
	return rows
}

func storeName(cat catalog.Catalog, id string) string {
	if s, ok := cat.Stores.Get(id); ok {
		return s.Name
	}
	return id
}

func taskName(cat catalog.Catalog, id string) string {
	if t, ok := cat.Tasks.Get(id); ok {
		return t.Name
	}
	return id
}

func taskNames(cat catalog.Catalog, ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = taskName(cat, id)
	}
	return strings.Join(names, ", ")
}
