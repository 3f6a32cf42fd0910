package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChecker_Exists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "A.mp4")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c := NewChecker()
	if !c.Exists(file) {
		t.Errorf("Exists(%q) = false, want true", file)
	}
	if c.Exists(filepath.Join(dir, "missing.mp4")) {
		t.Error("Exists(missing) = true, want false")
	}
}

func TestChecker_EnsureDir(t *testing.T) {
	c := NewChecker()
	path := filepath.Join(t.TempDir(), "videos", "Amphi A")

	if err := c.EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	// second call on an existing directory
	if err := c.EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() on existing dir error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("EnsureDir() did not create a directory at %s", path)
	}
}

func TestChecker_EnsureDirOverFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "videos")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := NewChecker().EnsureDir(file); err == nil {
		t.Error("EnsureDir() over a regular file expected error")
	}
}
