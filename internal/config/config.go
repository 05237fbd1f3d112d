// Package config handles configuration loading and defaults for pomodoro.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/pomodoro/config.yaml).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pomodoro/internal/fsutil"
	"pomodoro/internal/kvstore"
	"pomodoro/internal/pomodoro"

	"gopkg.in/yaml.v3"
)

// EnvDataDir overrides data_dir when set.
const EnvDataDir = "POMODORO_DATA_DIR"

// DefaultServerAddr is where `pomodoro serve` listens and where one-shot
// commands look for a running daemon.
const DefaultServerAddr = "127.0.0.1:7625"

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.pomodoro)
	DataDir string `yaml:"data_dir,omitempty"`

	Store         StoreConfig        `yaml:"store,omitempty"`
	Timer         TimerConfig        `yaml:"timer,omitempty"`
	Notifications NotificationConfig `yaml:"notifications,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	Server ServerConfig `yaml:"server,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`

	// path is where Load found the file; Save writes back there.
	path string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is one of file, sqlite, memory
	Backend string `yaml:"backend,omitempty"`

	// SQLitePath overrides <data_dir>/pomodoro.db
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// TimerConfig holds session lengths. Durations use Go syntax ("25m", "90s").
type TimerConfig struct {
	Work         time.Duration `yaml:"work,omitempty"`
	Break        time.Duration `yaml:"break,omitempty"`
	TickInterval time.Duration `yaml:"tick_interval,omitempty"`
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	// Enabled enables/disables desktop notifications. Sessions still end
	// on time when disabled.
	Enabled bool `yaml:"enabled"`

	// Sound plays SoundName instead of the platform default
	Sound bool `yaml:"sound"`

	SoundName string `yaml:"sound_name,omitempty"`
}

// ThemeConfig defines color settings (hex, e.g. "#FF5733").
type ThemeConfig struct {
	Work       string `yaml:"work,omitempty"`
	Break      string `yaml:"break,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Muted      string `yaml:"muted,omitempty"`
	Background string `yaml:"background,omitempty"`
	Text       string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "space", "w"
type KeysConfig struct {
	Quit          string `yaml:"quit,omitempty"`           // default: "q,ctrl+c"
	Help          string `yaml:"help,omitempty"`           // default: "?"
	Toggle        string `yaml:"toggle,omitempty"`         // default: "space"
	StartWork     string `yaml:"start_work,omitempty"`     // default: "w"
	StartBreak    string `yaml:"start_break,omitempty"`    // default: "b"
	Reset         string `yaml:"reset,omitempty"`          // default: "r"
	SwitchMode    string `yaml:"switch_mode,omitempty"`    // default: "m"
	EditDurations string `yaml:"edit_durations,omitempty"` // default: "d"
	ToggleSound   string `yaml:"toggle_sound,omitempty"`   // default: "s"
	ToggleHistory string `yaml:"toggle_history,omitempty"` // default: "h"
	Confirm       string `yaml:"confirm,omitempty"`        // default: "enter"
	Cancel        string `yaml:"cancel,omitempty"`         // default: "esc"
	NextField     string `yaml:"next_field,omitempty"`     // default: "tab"
}

// ServerConfig configures the local control API.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig configures the log output. The TUI owns the terminal, so it
// only logs when File is set.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	d := pomodoro.DefaultDurations()
	return &Config{
		DataDir: defaultDataDir(),
		Store: StoreConfig{
			Backend: kvstore.BackendFile,
		},
		Timer: TimerConfig{
			Work:         d.Work,
			Break:        d.Break,
			TickInterval: pomodoro.DefaultTickInterval,
		},
		Notifications: NotificationConfig{
			Enabled:   true,
			Sound:     true,
			SoundName: "bell",
		},
		Theme: ThemeConfig{
			Work:   "#EF4444", // Red
			Break:  "#10B981", // Emerald
			Accent: "#7C3AED", // Violet
			Muted:  "#6B7280", // Gray
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
		Log:    LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pomodoro"
	}
	return filepath.Join(home, ".pomodoro")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pomodoro")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pomodoro")
}

// Path returns the default config file location.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from path, merging it over the defaults. A
// missing file yields the defaults. POMODORO_DATA_DIR wins over data_dir.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			var userCfg Config
			if err := yaml.Unmarshal(data, &userCfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			var doc yaml.Node
			_ = yaml.Unmarshal(data, &doc)
			cfg.mergeFromYAML(&userCfg, &doc)
		}
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func setDuration(dst *time.Duration, src time.Duration) {
	if src != 0 {
		*dst = src
	}
}

// mergeFromYAML applies non-empty values from other. Booleans have a useful
// zero value, so they are only applied when the key is present in doc.
func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	setString(&c.DataDir, other.DataDir)
	setString(&c.Store.Backend, other.Store.Backend)
	setString(&c.Store.SQLitePath, other.Store.SQLitePath)

	setDuration(&c.Timer.Work, other.Timer.Work)
	setDuration(&c.Timer.Break, other.Timer.Break)
	setDuration(&c.Timer.TickInterval, other.Timer.TickInterval)

	setString(&c.Notifications.SoundName, other.Notifications.SoundName)
	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notifications.Enabled = other.Notifications.Enabled
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notifications.Sound = other.Notifications.Sound
	}

	t, o := &c.Theme, other.Theme
	setString(&t.Work, o.Work)
	setString(&t.Break, o.Break)
	setString(&t.Accent, o.Accent)
	setString(&t.Muted, o.Muted)
	setString(&t.Background, o.Background)
	setString(&t.Text, o.Text)

	k, ok := &c.Keys, other.Keys
	setString(&k.Quit, ok.Quit)
	setString(&k.Help, ok.Help)
	setString(&k.Toggle, ok.Toggle)
	setString(&k.StartWork, ok.StartWork)
	setString(&k.StartBreak, ok.StartBreak)
	setString(&k.Reset, ok.Reset)
	setString(&k.SwitchMode, ok.SwitchMode)
	setString(&k.EditDurations, ok.EditDurations)
	setString(&k.ToggleSound, ok.ToggleSound)
	setString(&k.ToggleHistory, ok.ToggleHistory)
	setString(&k.Confirm, ok.Confirm)
	setString(&k.Cancel, ok.Cancel)
	setString(&k.NextField, ok.NextField)

	setString(&c.Server.Addr, other.Server.Addr)
	setString(&c.Log.Level, other.Log.Level)
	setString(&c.Log.File, other.Log.File)
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Validate checks values that would otherwise fail later in odd places.
func (c *Config) Validate() error {
	if err := c.Durations().Validate(); err != nil {
		return fmt.Errorf("config timer: %w", err)
	}
	if c.Timer.TickInterval < 0 {
		return fmt.Errorf("config timer.tick_interval: must not be negative")
	}
	switch c.Store.Backend {
	case kvstore.BackendFile, kvstore.BackendSQLite, kvstore.BackendMemory:
	default:
		return fmt.Errorf("config store.backend: %w: %q", kvstore.ErrUnknownBackend, c.Store.Backend)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Durations returns the configured session lengths.
func (c *Config) Durations() pomodoro.Durations {
	return pomodoro.Durations{Work: c.Timer.Work, Break: c.Timer.Break}
}

// SetDurations stores d in the timer section.
func (c *Config) SetDurations(d pomodoro.Durations) {
	c.Timer.Work = d.Work
	c.Timer.Break = d.Break
}

// StoreOptions returns the kvstore options for this config.
func (c *Config) StoreOptions(logger *slog.Logger) kvstore.Options {
	return kvstore.Options{
		Backend:    c.Store.Backend,
		DataDir:    c.GetDataDir(),
		SQLitePath: expandHome(c.Store.SQLitePath),
		Logger:     logger,
	}
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config log.level: %w", err)
	}
	return lvl, nil
}

// Save writes the configuration back to where it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = Path()
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, fsutil.FilePerm)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return expandHome(c.DataDir)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
