package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Stores.IsValid(PlaceholderStoreID) {
		t.Error("placeholder store must not be valid")
	}
	if got := len(c.Stores.Real()); got != 4 {
		t.Errorf("expected 4 real stores, got %d", got)
	}
	if c.Tasks.Len() != 5 {
		t.Errorf("expected 5 tasks, got %d", c.Tasks.Len())
	}
	grooming, ok := c.Tasks.Get("open-grooming")
	if !ok || !grooming.RequiresPhoto || !grooming.Personal {
		t.Errorf("expected open-grooming to be a personal photo task, got %+v", grooming)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Tasks.Len() != Default().Tasks.Len() {
		t.Error("expected default catalog")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `{
		"stores": [{"id": "A", "name": "Store A"}],
		"tasks": [
			{"id": "T1", "name": "Photo", "requires_photo": true},
			{"id": "T2", "name": "Sweep"},
			{"id": "T3", "name": "Count"}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(c.Tasks.IDs(), ","); got != "T1,T2,T3" {
		t.Errorf("expected catalog order T1,T2,T3, got %s", got)
	}
	if !c.Stores.IsValid("A") {
		t.Error("expected store A to be valid")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"duplicate task", `{"stores":[{"id":"A"}],"tasks":[{"id":"T1"},{"id":"T1"}]}`},
		{"only placeholder store", `{"stores":[{"id":"-","placeholder":true}],"tasks":[{"id":"T1"}]}`},
		{"no tasks", `{"stores":[{"id":"A"}],"tasks":[]}`},
		{"empty store id", `{"stores":[{"id":" "}],"tasks":[{"id":"T1"}]}`},
		{"not json", `stores: A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
