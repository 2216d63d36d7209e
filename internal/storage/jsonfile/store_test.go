package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_InitTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storeduty.json")

	if err := NewStore(path).Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := NewStore(path).Init(); err == nil {
		t.Error("expected second Init to fail")
	}
}

func TestStore_LoadsHandWrittenDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storeduty.json")
	doc := `{
  "version": 1,
  "submissions": [
    {"id": "a", "timestamp": "2024-03-01 08:15:00", "store_id": "A", "employee_name": "Alice", "task_id": "T1"},
    {"id": "b", "timestamp": "garbage", "date": "2024-02-28", "store_id": "A", "task_id": "T2", "points": "-2.0", "status": "major_fault"}
  ]
}`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	subs, err := store.GetAllSubmissions()
	if err != nil {
		t.Fatalf("GetAllSubmissions failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	if subs[0].Date != "2024-03-01" || subs[0].Status != "submitted" {
		t.Errorf("unexpected first submission: %+v", subs[0])
	}
	if subs[1].Date != "2024-02-28" || subs[1].Points != -2 {
		t.Errorf("unexpected second submission: %+v", subs[1])
	}

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.Timezone == "" {
		t.Error("expected default settings for a document without settings")
	}
}
