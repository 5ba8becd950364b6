// Package config loads nixel.toml: tool commands, indentation width, search
// paths and exchange timeouts. Every field has a working default so the
// toolchain runs without any configuration at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"nixel/internal/nav"
)

// FileName is the manifest looked up from the working directory upward.
const FileName = "nixel.toml"

// Tool selects one external executable and its arguments.
type Tool struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Config is the full nixel configuration.
type Config struct {
	TabWidth       int      `toml:"tab_width"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	SearchPath     []string `toml:"search_path"`

	Evaluator Tool       `toml:"evaluator"`
	Formatter Tool       `toml:"formatter"`
	Repl      ReplConfig `toml:"repl"`
}

// ReplConfig extends Tool with the completion exchange poll window.
type ReplConfig struct {
	Command   string   `toml:"command"`
	Args      []string `toml:"args"`
	TimeoutMS int      `toml:"timeout_ms"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		TabWidth:       2,
		MaxDiagnostics: 100,
		Evaluator:      Tool{Command: "nix-instantiate", Args: []string{"--eval", "--strict", "--show-trace", "-"}},
		Formatter:      Tool{Command: "nixfmt"},
		Repl:           ReplConfig{Command: "nix", Args: []string{"repl"}, TimeoutMS: 2000},
	}
}

// Timeout converts the configured poll window, falling back to the default.
func (r ReplConfig) Timeout() time.Duration {
	if r.TimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Roots merges the configured search path with NIX_PATH from the
// environment; explicit configuration wins by coming first.
func (c Config) Roots() []nav.Root {
	var roots []nav.Root
	for _, entry := range c.SearchPath {
		roots = append(roots, nav.SearchPathFromEnv(entry)...)
	}
	roots = append(roots, nav.SearchPathFromEnv(os.Getenv("NIX_PATH"))...)
	return roots
}

// Load reads a manifest file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = Default().TabWidth
	}
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = Default().MaxDiagnostics
	}
	return cfg, nil
}

// Find walks from startDir upward looking for the manifest.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("config: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadNearest loads the manifest closest to startDir, or the defaults when
// none exists.
func LoadNearest(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
