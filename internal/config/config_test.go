package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	manifest := `
tab_width = 4

[formatter]
command = "alejandra"
args = ["--quiet"]

[repl]
timeout_ms = 500
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if cfg.TabWidth != 4 {
		t.Errorf("Expected tab_width 4, got %d", cfg.TabWidth)
	}
	if cfg.Formatter.Command != "alejandra" {
		t.Errorf("Expected formatter alejandra, got %q", cfg.Formatter.Command)
	}
	if got := cfg.Repl.Timeout(); got != 500*time.Millisecond {
		t.Errorf("Expected 500ms repl timeout, got %v", got)
	}
	// Untouched sections keep their defaults.
	if cfg.Evaluator.Command != "nix-instantiate" {
		t.Errorf("Expected default evaluator, got %q", cfg.Evaluator.Command)
	}
}

func TestLoadNearestWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("tab_width = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadNearest(nested)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if cfg.TabWidth != 8 {
		t.Errorf("Expected manifest from ancestor directory, got tab_width %d", cfg.TabWidth)
	}
}

func TestLoadNearestDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadNearest(t.TempDir())
	if err != nil {
		t.Fatalf("Expected defaults, got error %v", err)
	}
	if cfg.TabWidth != 2 || cfg.Repl.Command != "nix" {
		t.Errorf("Expected default config, got %+v", cfg)
	}
}
