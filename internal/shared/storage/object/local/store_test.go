package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gdpr-backend/internal/shared/storage/object"
)

func TestSaveWithKeyThenOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.SaveWithKey(ctx, "42/export_1.zip", "application/zip", bytes.NewReader([]byte("zip-bytes")))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != int64(len("zip-bytes")) {
		t.Fatalf("expected %d bytes written, got %d", len("zip-bytes"), n)
	}

	rc, err := store.Open(ctx, "42/export_1.zip")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "zip-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../secret", "/etc/passwd", "a/../../b", "", "."} {
		if _, err := store.Open(context.Background(), key); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestOpenHonorsCanceledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Open(ctx, "42/export_1.zip"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "42/missing.zip"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveWithKeyLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	ctx := context.Background()
	for _, body := range []string{"first", "second"} {
		if _, err := store.SaveWithKey(ctx, "42/export_1.zip", "application/zip", bytes.NewReader([]byte(body))); err != nil {
			t.Fatalf("SaveWithKey: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, "42"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "export_1.zip" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	data, _ := os.ReadFile(filepath.Join(root, "42", "export_1.zip"))
	if string(data) != "second" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}
