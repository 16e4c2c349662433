package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "SLURPY_CONFIG"

// Config holds the global slurpy configuration.
type Config struct {
	// Binary is the pdftk executable; a bare name is looked up on $PATH by
	// the shell.
	Binary string `yaml:"binary"`
	// Options are stored on every toolkit before job options are applied.
	Options   map[string]any `yaml:"options"`
	Overwrite bool           `yaml:"overwrite"`
	Audit     AuditConfig    `yaml:"audit"`
	Log       LogConfig      `yaml:"log"`
}

// AuditConfig controls audit log settings.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls diagnostic logging to stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Binary: pdftk.DefaultBinary,
		Audit: AuditConfig{
			Enabled: true,
			Path:    filepath.Join(home, ".local", "share", "slurpy", "audit.jsonl"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the config from $SLURPY_CONFIG, or the standard location
// (~/.config/slurpy/config.yaml) if that is unset. A missing file yields
// the default config.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Binary == "" {
		cfg.Binary = pdftk.DefaultBinary
	}
	if _, err := cfg.ToolkitOptions(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.Binary = expandHome(cfg.Binary)
	cfg.Audit.Path = expandHome(cfg.Audit.Path)

	return cfg, nil
}

// ToolkitOptions converts the configured default options.
func (c *Config) ToolkitOptions() (pdftk.Options, error) {
	return pdftk.ParseOptions(c.Options)
}

// ApplyOptions stores the configured default options on tk.
func (c *Config) ApplyOptions(tk *pdftk.Toolkit) error {
	opts, err := c.ToolkitOptions()
	if err != nil {
		return err
	}
	return tk.SetOptions(opts)
}

// Path returns the config file path: $SLURPY_CONFIG if set, otherwise the
// standard location.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return expandHome(p)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "slurpy", "config.yaml")
}

func expandHome(p string) string {
	if p != "" && p[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}
