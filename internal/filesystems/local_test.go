package filesystems_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/losb/stackcheck/internal/filesystems"
)

func TestLocalFS_StatAndReadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "compose.yaml"), []byte("services: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "app"), 0o755); err != nil {
		t.Fatal(err)
	}

	lfs := filesystems.NewLocalFS()

	if !filesystems.IsDir(lfs, filepath.Join(dir, "app")) {
		t.Error("expected app to be a directory")
	}
	if !filesystems.Exists(lfs, filepath.Join(dir, "compose.yaml")) {
		t.Error("expected compose.yaml to exist")
	}
	if _, err := lfs.Stat(filepath.Join(dir, "missing")); !filesystems.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	found, err := filesystems.FindFile(lfs, dir, "COMPOSE.YAML", lfs.ReadDir(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != filepath.Join(dir, "compose.yaml") {
		t.Errorf("expected case-insensitive match, got %q", found)
	}
}

func TestNewFileSystem(t *testing.T) {
	fsys, p, err := filesystems.NewFileSystem("file:///srv/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := fsys.(*filesystems.LocalFS); !ok {
		t.Errorf("expected LocalFS, got %T", fsys)
	}
	if p != "/srv/app" {
		t.Errorf("expected /srv/app, got %s", p)
	}

	if _, _, err := filesystems.NewFileSystem("s3://bucket/key"); err == nil {
		t.Error("expected unsupported scheme error")
	}
}
