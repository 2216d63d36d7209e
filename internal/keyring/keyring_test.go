package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://auditor@localhost:5432/storeduty?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("  "); err == nil {
		t.Error("SetConnectionString with a blank value should return an error")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://auditor@localhost/storeduty"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete, GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want %v", err, ErrNotFound)
	}
}

func TestResolveConnectionString_EnvWins(t *testing.T) {
	gokeyring.MockInit()
	if err := SetConnectionString("postgres://keyring@localhost/storeduty"); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConnectionString, "postgres://env@localhost/storeduty")
	got, err := ResolveConnectionString()
	if err != nil {
		t.Fatal(err)
	}
	if got != "postgres://env@localhost/storeduty" {
		t.Errorf("expected env connection string, got %q", got)
	}

	t.Setenv(EnvConnectionString, "")
	got, _ = ResolveConnectionString()
	if got != "postgres://keyring@localhost/storeduty" {
		t.Errorf("expected keyring fallback, got %q", got)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring should report available")
	}
}
