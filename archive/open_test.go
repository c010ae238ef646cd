package archive_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirjuddington/slade-core/archive"
)

func writeTestZip(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("hello.txt")
	if err != nil {
		t.Fatalf("zw.Create() error = %v", err)
	}
	if _, err := w.Write([]byte("hi")); err != nil {
		t.Fatalf("w.Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zw.Close() error = %v", err)
	}
}

func TestOpenDetectsZipByMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pk3")
	writeTestZip(t, path)

	a, err := archive.Open(path, archive.OpenOptions{}, nil)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", path, err)
	}
	if a.FormatID() != "zip" {
		t.Errorf("FormatID() = %q, want zip", a.FormatID())
	}
	if a.NumEntries() != 1 {
		t.Errorf("NumEntries() = %d, want 1", a.NumEntries())
	}
}

func TestOpenDispatchesDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	a, err := archive.Open(dir, archive.OpenOptions{}, nil)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", dir, err)
	}
	if a.FormatID() != "folder" {
		t.Errorf("FormatID() = %q, want folder", a.FormatID())
	}
}

func TestOpenRejectsUnrecognizedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.bin")
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03}, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := archive.Open(path, archive.OpenOptions{}, nil); err == nil {
		t.Errorf("Open() on garbage bytes = nil error, want error")
	}
}
