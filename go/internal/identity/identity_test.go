package identity

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "identity.yaml")
	store := NewFileStore(path)

	if _, err := store.Load(); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("Load on missing file: got %v, want ErrNoIdentity", err)
	}

	want := Identity{ParticipantID: "p-1", Username: "alice", SessionID: "alice-123"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if !strings.Contains(string(data), "participant_id: p-1") {
		t.Errorf("file content not YAML as expected:\n%s", data)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "identity.yaml"))
	if err := store.Save(Identity{ParticipantID: "old", Username: "alice", SessionID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(Identity{ParticipantID: "new", Username: "bob", SessionID: "s2"}); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.ParticipantID != "new" || got.Username != "bob" {
		t.Errorf("Load = %+v, want the second identity", got)
	}
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "identity.yaml"))
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on missing file should succeed: %v", err)
	}
	if err := store.Save(Identity{ParticipantID: "p", Username: "u", SessionID: "s"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("Load after Clear: got %v, want ErrNoIdentity", err)
	}
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.yaml")
	if err := os.WriteFile(path, []byte("participant_id: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load()
	if err == nil || errors.Is(err, ErrNoIdentity) {
		t.Errorf("Load on malformed file: got %v, want parse error", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Load(); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("empty store: got %v", err)
	}
	want := Identity{ParticipantID: "p", Username: "u", SessionID: "s"}
	store.Save(want)
	if got, _ := store.Load(); got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
	store.Clear()
	if _, err := store.Load(); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("after Clear: got %v", err)
	}
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID("alice")
	b := NewSessionID("alice")
	if !strings.HasPrefix(a, "alice-") {
		t.Errorf("session id %q should start with username", a)
	}
	if a == b {
		t.Error("session ids should be unique")
	}
}
