package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	url, err := store.Store([]byte("hello"), "voice.ogg")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".ogg") {
		t.Fatalf("url = %q; want /uploads/<ts>.ogg", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("stored content = %q; want hello", data)
	}
}

func TestDiskStoreRejectsHostileExtension(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	url, err := store.Store([]byte("x"), "../../../etc/passwd")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if strings.Contains(url, "..") || strings.Contains(strings.TrimPrefix(url, "/uploads/"), "/") {
		t.Fatalf("url %q leaks path components", url)
	}
}
