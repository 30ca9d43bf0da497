package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != runtime.NumCPU() {
		t.Errorf("Threads = %d, want %d", cfg.Threads, runtime.NumCPU())
	}
	if cfg.Hidden {
		t.Error("Hidden should default to false")
	}
	if len(cfg.IgnoreFileNames) != 2 {
		t.Errorf("IgnoreFileNames = %v, want 2 defaults", cfg.IgnoreFileNames)
	}
}

func TestLoadOverlaysProvidedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "threads = 4\nhidden = true\nignore_file_names = [\".mtlignore\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != 4 {
		t.Errorf("Threads = %d, want 4", cfg.Threads)
	}
	if !cfg.Hidden {
		t.Error("Hidden should be true")
	}
	if len(cfg.IgnoreFileNames) != 1 || cfg.IgnoreFileNames[0] != ".mtlignore" {
		t.Errorf("IgnoreFileNames = %v, want [.mtlignore]", cfg.IgnoreFileNames)
	}
}

func TestLoadPartialConfigKeepsRemainingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("threads = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != 2 {
		t.Errorf("Threads = %d, want 2", cfg.Threads)
	}
	if len(cfg.IgnoreFileNames) != 2 {
		t.Errorf("IgnoreFileNames = %v, want 2 defaults", cfg.IgnoreFileNames)
	}
}
