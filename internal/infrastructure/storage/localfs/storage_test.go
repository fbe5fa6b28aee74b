package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStorageRoundTripAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "abc_notes.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := s.Open(ctx, "abc_notes.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(raw) != "hello" {
		t.Fatalf("unexpected content %q (err=%v)", raw, err)
	}

	if err := s.Delete(ctx, "abc_notes.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc_notes.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	if err := s.Delete(ctx, "abc_notes.txt"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestStorageRejectsPathTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"", "../escape.txt", "nested/file.txt", ".hidden"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
