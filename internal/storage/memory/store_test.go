package memory

import (
	"testing"

	"github.com/julianstephens/storeduty/internal/models"
)

func TestStore_LegacyRecordDefaults(t *testing.T) {
	store := NewStore()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	store.AppendRecord(models.Record{
		models.FieldID:      "legacy-1",
		models.FieldDate:    "2024-03-01",
		models.FieldStoreID: "A",
		models.FieldTaskID:  "T1",
		"unexpected_column": "ignored",
	})

	sub, err := store.GetSubmission("legacy-1")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if sub.Status != "submitted" || sub.Points != 0 {
		t.Errorf("expected legacy defaults, got status=%q points=%d", sub.Status, sub.Points)
	}
	if sub.Date != "2024-03-01" {
		t.Errorf("expected stored date fallback, got %q", sub.Date)
	}
}

func TestStore_UpdateKeepsImmutableFields(t *testing.T) {
	store := NewStore()
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sub := models.Submission{ID: "s1", Date: "2024-03-01", StoreID: "A", EmployeeName: "Alice", TaskID: "T1", Status: "submitted"}
	if err := store.AppendSubmission(sub); err != nil {
		t.Fatalf("AppendSubmission failed: %v", err)
	}

	changed := sub
	changed.EmployeeName = "Mallory"
	changed.Status = "major_fault"
	changed.Points = -2
	if err := store.UpdateSubmission(changed); err != nil {
		t.Fatalf("UpdateSubmission failed: %v", err)
	}

	got, err := store.GetSubmission("s1")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if got.EmployeeName != "Alice" {
		t.Errorf("employee name must not change, got %q", got.EmployeeName)
	}
	if got.Status != "major_fault" || got.Points != -2 {
		t.Errorf("expected major_fault/-2, got %s/%d", got.Status, got.Points)
	}
}
