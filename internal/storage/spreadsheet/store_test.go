package spreadsheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/models"
)

func setupTestSpreadsheetStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "storeduty.xlsx"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	return store
}

func TestStore_AppendAndUpdate(t *testing.T) {
	store := setupTestSpreadsheetStore(t)

	sub := models.Submission{
		ID:           "s1",
		Timestamp:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Date:         "2024-03-01",
		StoreID:      "A",
		EmployeeName: "Alice",
		TaskID:       "T1",
		Status:       constants.StatusSubmitted,
	}
	if err := store.AppendSubmission(sub); err != nil {
		t.Fatalf("AppendSubmission failed: %v", err)
	}
	if err := store.AppendSubmission(sub); err == nil {
		t.Error("expected duplicate id to be rejected")
	}

	sub.Status = constants.StatusMajorFault
	sub.Points = -2
	if err := store.UpdateSubmission(sub); err != nil {
		t.Fatalf("UpdateSubmission failed: %v", err)
	}

	got, err := store.GetSubmission("s1")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if got.Points != -2 || got.Status != constants.StatusMajorFault {
		t.Errorf("expected major_fault/-2, got %s/%d", got.Status, got.Points)
	}
	if got.EmployeeName != "Alice" || got.TaskID != "T1" {
		t.Errorf("unexpected submission: %+v", got)
	}

	if _, err := os.Stat(store.lock.path); !os.IsNotExist(err) {
		t.Error("lockfile should be released after a write")
	}
}

func TestStore_ToleratesReorderedAndExtraColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.xlsx")

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", constants.SubmissionSheet); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{constants.AdjustmentSheet, constants.SettingsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
	}
	rows := [][]interface{}{
		{"Task_ID", "remarks", "store_id", "id", "date", "employee_name"},
		{"T2", "old sheet", "A", "legacy-1", "2024-01-05", "Bob"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(constants.SubmissionSheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SetSheetRow(constants.SettingsSheet, "A1", &[]interface{}{"key", "value"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(constants.SettingsSheet, "A2", &[]interface{}{constants.SettingTimezone, "UTC"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	subs, err := store.GetAllSubmissions()
	if err != nil {
		t.Fatalf("GetAllSubmissions failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
	got := subs[0]
	if got.ID != "legacy-1" || got.TaskID != "T2" || got.Date != "2024-01-05" {
		t.Errorf("unexpected submission: %+v", got)
	}
	if got.Status != constants.StatusSubmitted || got.Points != 0 {
		t.Errorf("expected legacy defaults, got %s/%d", got.Status, got.Points)
	}

	// Updating adds the missing status and points columns.
	got.Status = constants.StatusMinorFault
	got.Points = -1
	if err := store.UpdateSubmission(got); err != nil {
		t.Fatalf("UpdateSubmission failed: %v", err)
	}
	again, err := store.GetSubmission("legacy-1")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if again.Points != -1 || again.EmployeeName != "Bob" {
		t.Errorf("unexpected submission after update: %+v", again)
	}
}

func TestStore_Adjustments(t *testing.T) {
	store := setupTestSpreadsheetStore(t)

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, adj := range []models.Adjustment{
		{ID: "a1", SubmissionID: "s1", Action: models.ActionMinorFault, DeltaPoints: -1, NewStatus: constants.StatusMinorFault, CreatedAt: created},
		{ID: "a2", SubmissionID: "s2", Action: models.ActionApprove, NewStatus: constants.StatusApproved, CreatedAt: created},
	} {
		if err := store.AppendAdjustment(adj); err != nil {
			t.Fatalf("AppendAdjustment failed: %v", err)
		}
	}

	trail, err := store.GetAdjustments("s1")
	if err != nil {
		t.Fatalf("GetAdjustments failed: %v", err)
	}
	if len(trail) != 1 || trail[0].DeltaPoints != -1 || !trail[0].CreatedAt.Equal(created) {
		t.Errorf("unexpected trail: %+v", trail)
	}

	ok, err := store.HasAdjustment("a2")
	if err != nil || !ok {
		t.Errorf("expected a2 to exist, got %v (%v)", ok, err)
	}
	ok, _ = store.HasAdjustment("missing")
	if ok {
		t.Error("expected missing adjustment to be absent")
	}
}

type fakeProcess struct{ pid int }

func (p fakeProcess) Pid() int            { return p.pid }
func (p fakeProcess) PPid() int           { return 1 }
func (p fakeProcess) Executable() string { return "storeduty" }

func TestLock_TakesOverStaleLock(t *testing.T) {
	orig := findProcessFunc
	defer func() { findProcessFunc = orig }()
	findProcessFunc = func(int) (ps.Process, error) { return nil, nil }

	lock := fileLock{path: filepath.Join(t.TempDir(), constants.SpreadsheetLockName)}
	if err := os.WriteFile(lock.path, []byte("999999"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := lock.acquire(); err != nil {
		t.Fatalf("expected stale lock takeover, got %v", err)
	}
	lock.release()
}

func TestLock_WaitsForLiveOwner(t *testing.T) {
	orig := findProcessFunc
	defer func() { findProcessFunc = orig }()
	findProcessFunc = func(pid int) (ps.Process, error) { return fakeProcess{pid: pid}, nil }

	lock := fileLock{path: filepath.Join(t.TempDir(), constants.SpreadsheetLockName)}
	if err := os.WriteFile(lock.path, []byte("424242"), 0600); err != nil {
		t.Fatal(err)
	}

	err := lock.acquire()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
