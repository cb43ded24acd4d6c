// Package config handles loading and saving leadsheet configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/leadsheet/config.yaml
//   - State:   ~/.local/state/leadsheet/ (library database, debug log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "leadsheet"

// Export formats for the clipboard.
const (
	ExportText     = "text"
	ExportMarkdown = "markdown"
)

// FilesConfig controls how song files are found and followed.
type FilesConfig struct {
	DefaultDir string   `yaml:"default_dir,omitempty"` // Starting directory for the file picker
	Watch      bool     `yaml:"watch"`                 // Reload the open file when it changes on disk
	Extensions []string `yaml:"extensions,omitempty"`  // File picker filter, e.g. [".txt", ".chords"]
}

// ExportConfig controls clipboard export.
type ExportConfig struct {
	Format string `yaml:"format,omitempty"` // text or markdown
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowLineNumbers bool `yaml:"show_line_numbers,omitempty"`
}

// LibraryConfig controls the recents/parse-cache database.
type LibraryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // Defaults to <state dir>/library.db
}

// Config is the top-level configuration for leadsheet.
type Config struct {
	Files   FilesConfig   `yaml:"files"`
	Export  ExportConfig  `yaml:"export"`
	UI      UIConfig      `yaml:"ui"`
	Library LibraryConfig `yaml:"library"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Files: FilesConfig{
			DefaultDir: home,
			Watch:      true,
		},
		Export:  ExportConfig{Format: ExportText},
		Library: LibraryConfig{Enabled: true},
	}
}

// ConfigDir returns the XDG config directory for leadsheet.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for leadsheet.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LibraryPath returns the resolved library database path.
func (c Config) LibraryPath() string {
	if c.Library.Path != "" {
		return c.Library.Path
	}
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "library.db")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Files.DefaultDir = expandHome(cfg.Files.DefaultDir)
	cfg.Library.Path = expandHome(cfg.Library.Path)

	return cfg, nil
}

// Validate reports configuration values leadsheet cannot act on.
func (c Config) Validate() error {
	switch strings.ToLower(c.Export.Format) {
	case "", ExportText, ExportMarkdown:
	default:
		return fmt.Errorf("invalid export.format %q (want %s or %s)", c.Export.Format, ExportText, ExportMarkdown)
	}
	for _, ext := range c.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid files.extensions entry %q (must start with '.')", ext)
		}
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
