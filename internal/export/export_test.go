package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/models"
)

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		Stores: models.NewStoreCatalog([]models.Store{
			{ID: "-", Name: "Select", Placeholder: true},
			{ID: "A", Name: "Store A"},
			{ID: "B", Name: "Store B"},
		}),
		Tasks: models.NewTaskCatalog([]models.Task{
			{ID: "T1", Name: "Sweep"},
			{ID: "T2", Name: "Count"},
		}),
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	report := Report{
		Completion: models.CompletionReport{
			Date: "2024-03-01",
			Stores: map[string]map[string]models.TaskCompletion{
				"A": {"T1": {Completed: true, Completers: []string{"Alice", "Bob"}, FirstCompleter: "Alice"}, "T2": {}},
				"B": {"T1": {}, "T2": {}},
			},
		},
		Penalties: models.PenaltyReport{Date: "2024-03-01", Stores: []models.StorePenalty{
			{StoreID: "B", MissingCount: 2, MissingTasks: []string{"T1", "T2"}, PenaltyPoints: 2},
			{StoreID: "A", MissingCount: 1, MissingTasks: []string{"T2"}, PenaltyPoints: 1},
		}},
		History: []models.DayPenalty{{Date: "2024-03-01", StoreID: "A", MissingCount: 1, MissingTasks: []string{"T2"}}},
		Ranking: []models.StoreRanking{{StoreID: "B", TotalMissing: 2, Days: 1}, {StoreID: "A", TotalMissing: 1, Days: 1}},
		Submissions: []models.Submission{{
			ID: "s1", Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), StoreID: "A",
			EmployeeName: "Alice", TaskID: "T1", Status: "submitted",
		}},
	}

	if err := WriteWorkbook(path, testCatalog(), report); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	want := []string{SheetCompletion, SheetPenalties, SheetHistory, SheetRanking, SheetLog}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	rows, err := f.GetRows(SheetCompletion)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 stores, got %d rows", len(rows))
	}
	if rows[0][2] != "Sweep" || rows[1][1] != "Store A" || rows[1][2] != "✓ Alice, Bob" {
		t.Errorf("unexpected completion rows %v", rows)
	}

	penalties, _ := f.GetRows(SheetPenalties)
	if penalties[1][1] != "Store B" || penalties[1][3] != "Sweep, Count" || penalties[1][4] != "2" {
		t.Errorf("unexpected penalty row %v", penalties[1])
	}

	ranking, _ := f.GetRows(SheetRanking)
	if ranking[1][0] != "1" || ranking[1][1] != "Store B" {
		t.Errorf("unexpected ranking row %v", ranking[1])
	}

	log, _ := f.GetRows(SheetLog)
	if log[1][0] != "2024-03-01 09:00:00" || log[1][3] != "Sweep" {
		t.Errorf("unexpected log row %v", log[1])
	}
}
