package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArtifactPathIsPerVersion(t *testing.T) {
	first := ArtifactPath("task-1", "logo.png", time.Unix(100, 0))
	second := ArtifactPath("task-1", "logo.png", time.Unix(200, 0))

	if first == second {
		t.Error("uploads at different times must get distinct object paths")
	}
	if filepath.Dir(first) != filepath.Dir(second) {
		t.Error("versions of one task should share a namespace")
	}

	// path traversal in the filename must not escape the task namespace
	escaped := ArtifactPath("task-1", "../../etc/passwd", time.Unix(100, 0))
	if filepath.Dir(escaped) != "tasks/task-1" {
		t.Errorf("unexpected namespace for hostile filename: %s", escaped)
	}
}

func TestLocalStorePutAndURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://127.0.0.1:8080/files/")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	objectPath := ArtifactPath("task-1", "deliverable.zip", time.Unix(100, 0))
	if err := store.Put(context.Background(), objectPath, []byte("zipbytes"), "application/zip"); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.root, filepath.FromSlash(objectPath)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "zipbytes" {
		t.Errorf("stored bytes differ: %q", data)
	}

	url := store.PublicURL(objectPath)
	want := "http://127.0.0.1:8080/files/tasks/task-1/100_deliverable.zip"
	if url != want {
		t.Errorf("PublicURL() = %s, want %s", url, want)
	}
}
