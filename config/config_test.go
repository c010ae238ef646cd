package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirjuddington/slade-core/config"
)

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	want := config.Defaults()
	if cfg != want {
		t.Errorf("Load(\"\") = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slade.yaml")
	content := "max_entry_size_mb: 512\nzip_allow_duplicate_names: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}
	if cfg.MaxEntrySizeMB != 512 {
		t.Errorf("MaxEntrySizeMB = %v, want 512", cfg.MaxEntrySizeMB)
	}
	if !cfg.ZipAllowDuplicateNames {
		t.Errorf("ZipAllowDuplicateNames = false, want true")
	}
	// keys absent from the file keep their default
	if !cfg.IwadLock {
		t.Errorf("IwadLock = false, want default true")
	}
}
