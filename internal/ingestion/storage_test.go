package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGetDocument(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"records":[]}`)
	if err := s.PutDocument(ctx, "tenant1", "doc1", data); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	got, err := s.GetDocument(ctx, "tenant1", "doc1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetDocument = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "tenant1", "documents", "doc1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageOwnerOnlyPerms(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	if err := s.PutDocument(ctx, "tenant1", "doc1", []byte(`{}`)); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	fi, err := os.Stat(filepath.Join(dir, "tenant1", "documents", "doc1.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Errorf("file perm = %o, want 600", perm)
	}

	di, err := os.Stat(filepath.Join(dir, "tenant1", "documents"))
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if perm := di.Mode().Perm(); perm != 0o700 {
		t.Errorf("dir perm = %o, want 700", perm)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	_, err := s.GetDocument(ctx, "tenant1", "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent document")
	}
}
