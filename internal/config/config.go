// Package config loads the YAML settings file and builds the logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Mine-Sense/internal/board"
)

// DefaultPath is the settings file looked for in the working directory.
const DefaultPath = "minesense.yaml"

// Config is the full settings file.
type Config struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	ClickCooldown time.Duration `yaml:"click_cooldown"`
	FlagCooldown  time.Duration `yaml:"flag_cooldown"`
	Profile       string        `yaml:"profile"`
	Mines         int           `yaml:"mines"`
	Seed          int64         `yaml:"seed"`
	AutoStart     bool          `yaml:"auto_start"`
	Log           LogConfig     `yaml:"log"`
	Remote        RemoteConfig  `yaml:"remote"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// RemoteConfig controls the HTTP approval surface.
type RemoteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TickInterval:  500 * time.Millisecond,
		ClickCooldown: 120 * time.Millisecond,
		FlagCooldown:  250 * time.Millisecond,
		Profile:       "medium",
		Mines:         40,
		Seed:          1,
		Log:           LogConfig{Level: "info", Format: "text"},
		Remote:        RemoteConfig{Addr: "127.0.0.1:8787"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Geometry returns the configured board profile.
func (c Config) Geometry() (board.Geometry, error) {
	return board.ProfileByName(c.Profile)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"tick_interval", c.TickInterval},
		{"click_cooldown", c.ClickCooldown},
		{"flag_cooldown", c.FlagCooldown},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.val)
		}
	}
	g, err := c.Geometry()
	if err != nil {
		return fmt.Errorf("profile must be one of %s: %w", strings.Join(board.ProfileNames(), ", "), err)
	}
	if c.Mines <= 0 || c.Mines > g.Cells()-9 {
		return fmt.Errorf("mines must be in 1..%d for %s, got %d", g.Cells()-9, g.Name, c.Mines)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Remote.Enabled && c.Remote.Addr == "" {
		return errors.New("remote.addr is required when remote.enabled is set")
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return lvl, nil
}

// NewLogger builds the configured handler writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := parseLevel(c.Log.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
