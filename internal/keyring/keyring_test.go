package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	want := "postgres://tracker@localhost:5432/daylap?sslmode=disable"
	if err := SetConnectionString(want); err != nil {
		t.Fatalf("SetConnectionString failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString failed: %v", err)
	}
	if got != want {
		t.Errorf("GetConnectionString = %q, want %q", got, want)
	}
}

func TestSetConnectionStringRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("expected an error for an empty connection string")
	}
}

func TestGetConnectionStringNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://tracker@localhost/daylap"); err != nil {
		t.Fatalf("SetConnectionString failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("expected the mock keyring to be available")
	}
}
