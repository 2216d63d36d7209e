package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "storeduty.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	addSubmission(t, store, "s1")
	addSubmission(t, store, "s2")
	return dbPath
}

func addSubmission(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	err := store.AppendSubmission(models.Submission{
		ID:           id,
		Timestamp:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Date:         "2024-03-01",
		StoreID:      "A",
		EmployeeName: "Alice",
		TaskID:       "T2",
		Status:       constants.StatusSubmitted,
	})
	if err != nil {
		t.Fatalf("failed to append submission: %v", err)
	}
}

func countSubmissions(t *testing.T, dbPath string) int {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()

	subs, err := store.GetAllSubmissions()
	if err != nil {
		t.Fatalf("failed to read submissions: %v", err)
	}
	return len(subs)
}

// steppingClock returns a clock that advances a minute per call.
func steppingClock() func() time.Time {
	now := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasSuffix(backupPath, constants.BackupFileSuffix) {
		t.Errorf("unexpected backup name %s", backupPath)
	}
	if _, err := os.Stat(backupPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("uncompressed snapshot was left behind")
	}

	restored := filepath.Join(t.TempDir(), "restored.db")
	if err := decompressFile(backupPath, restored); err != nil {
		t.Fatalf("backup is not valid xz: %v", err)
	}
	if err := verifyDatabase(restored); err != nil {
		t.Fatalf("decompressed backup is not a database: %v", err)
	}
	if n := countSubmissions(t, restored); n != 2 {
		t.Errorf("expected 2 submissions in backup, got %d", n)
	}
}

func TestCreateBackup_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected an error for a missing database")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
	oldestKept := time.Date(2024, 3, 1, 22, 6, 0, 0, time.UTC)
	if !backups[len(backups)-1].Timestamp.Equal(oldestKept) {
		t.Errorf("expected oldest kept backup at %v, got %v", oldestKept, backups[len(backups)-1].Timestamp)
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Path == "" || b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info %+v", b)
		}
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		name := filepath.Base(path)
		if seen[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		seen[name] = true
	}

	backups, _ := mgr.ListBackups()
	if len(backups) != 5 {
		t.Errorf("counter-suffixed backups must be listed, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	addSubmission(t, store, "s3")
	store.Close()
	if n := countSubmissions(t, dbPath); n != 3 {
		t.Fatalf("expected 3 submissions before restore, got %d", n)
	}

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if n := countSubmissions(t, dbPath); n != 2 {
		t.Errorf("expected 2 submissions after restore, got %d", n)
	}

	backups, _ := mgr.ListBackups()
	if len(backups) != 2 {
		t.Errorf("restore should snapshot the current database first, got %d backups", len(backups))
	}
}

func TestRestoreBackup_RejectsInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	invalid := filepath.Join(t.TempDir(), "storeduty-20240301-2200.db.xz")
	if err := os.WriteFile(invalid, []byte("not a backup"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.RestoreBackup(invalid); err == nil {
		t.Error("expected restore of an invalid file to fail")
	}
	if n := countSubmissions(t, dbPath); n != 2 {
		t.Errorf("database must be untouched after a failed restore, got %d submissions", n)
	}
	if err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.db.xz")); err == nil {
		t.Error("expected restore of a missing file to fail")
	}
}

func TestParseStamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"20240301-2200", true},
		{"20240301-220015", true},
		{"20240301-220015-3", true},
		{"20240301", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if _, ok := parseStamp(tt.in); ok != tt.ok {
			t.Errorf("parseStamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
