// Package config handles configuration loading, validation, and management for cursortrail.
package config

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete overlay configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Trail configuration for the chain and its paint style.
	Trail TrailConfig `toml:"trail" json:"trail" yaml:"trail"`

	// Scheduler configuration for the periodic ticks.
	Scheduler SchedulerConfig `toml:"scheduler" json:"scheduler" yaml:"scheduler"`

	// Overlay configuration for the window and the system cursor.
	Overlay OverlayConfig `toml:"overlay" json:"overlay" yaml:"overlay"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// TrailConfig holds the chain and style parameters.
type TrailConfig struct {
	// Length is the number of nodes in the chain. Fixed for the process lifetime.
	Length int `toml:"length" json:"length" yaml:"length"`

	// StartWidth is the stroke width of the segment nearest the cursor.
	// The head disc has radius StartWidth/2.
	StartWidth float64 `toml:"start_width" json:"start_width" yaml:"start_width"`

	// MinWidth is the floor applied to tapered widths.
	MinWidth float64 `toml:"min_width" json:"min_width" yaml:"min_width"`

	// Friction is the fraction of the gap to the predecessor closed per tick.
	// Must be in (0, 1).
	Friction float64 `toml:"friction" json:"friction" yaml:"friction"`

	// Color is the trail color as "#rrggbb" or "#rrggbbaa".
	Color string `toml:"color" json:"color" yaml:"color"`
}

// SchedulerConfig holds the tick periods.
type SchedulerConfig struct {
	// AnimationTickMs is the physics tick period in milliseconds.
	AnimationTickMs int `toml:"animation_tick_ms" json:"animation_tick_ms" yaml:"animation_tick_ms"`

	// MaintenanceTickMs is the window re-assertion period in milliseconds.
	MaintenanceTickMs int `toml:"maintenance_tick_ms" json:"maintenance_tick_ms" yaml:"maintenance_tick_ms"`

	// ShutdownGraceMs is how long the frame loop gets to exit after an
	// interrupt before the cursor is restored from the signal goroutine.
	ShutdownGraceMs int `toml:"shutdown_grace_ms" json:"shutdown_grace_ms" yaml:"shutdown_grace_ms"`
}

// OverlayConfig holds window and cursor settings.
type OverlayConfig struct {
	// Title is the overlay window title, used to resolve its native handle.
	Title string `toml:"title" json:"title" yaml:"title"`

	// TransparentKey is the color keyed out on platforms without per-pixel alpha.
	TransparentKey string `toml:"transparent_key" json:"transparent_key" yaml:"transparent_key"`

	// HideCursor replaces the system cursor with a blank one while running.
	HideCursor bool `toml:"hide_cursor" json:"hide_cursor" yaml:"hide_cursor"`

	// DPIAware opts the process into per-monitor DPI awareness at startup.
	DPIAware bool `toml:"dpi_aware" json:"dpi_aware" yaml:"dpi_aware"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "auto", "text" or "json".
	// "auto" picks text on a terminal and JSON otherwise.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file", or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file" or "both").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Trail: TrailConfig{
			Length:     35,
			StartWidth: 16,
			MinWidth:   0.5,
			Friction:   0.60,
			Color:      "#000000",
		},
		Scheduler: SchedulerConfig{
			AnimationTickMs:   2,
			MaintenanceTickMs: 500,
			ShutdownGraceMs:   2000,
		},
		Overlay: OverlayConfig{
			Title:          "cursortrail overlay",
			TransparentKey: "#ff00ff",
			HideCursor:     true,
			DPIAware:       true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "auto",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "cursortrail.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ConfigDir returns the configuration directory.
// CURSORTRAIL_CONFIG_DIR overrides the platform default.
func ConfigDir() string {
	if envDir := os.Getenv("CURSORTRAIL_CONFIG_DIR"); envDir != "" {
		return envDir
	}
	return PlatformConfigDir()
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with CURSORTRAIL_. Unparseable numeric
// values are ignored.
func (c *Config) ApplyEnvOverrides() {
	// Logging overrides
	if v := os.Getenv("CURSORTRAIL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CURSORTRAIL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CURSORTRAIL_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}

	// Trail overrides
	if v := os.Getenv("CURSORTRAIL_TRAIL_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Trail.Length = n
		}
	}
	if v := os.Getenv("CURSORTRAIL_TRAIL_COLOR"); v != "" {
		c.Trail.Color = v
	}
	if v := os.Getenv("CURSORTRAIL_FRICTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Trail.Friction = f
		}
	}

	// Overlay overrides
	if v := os.Getenv("CURSORTRAIL_HIDE_CURSOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Overlay.HideCursor = b
		}
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// AnimationTick returns the physics tick period.
func (c *Config) AnimationTick() time.Duration {
	return time.Duration(c.Scheduler.AnimationTickMs) * time.Millisecond
}

// MaintenanceTick returns the window re-assertion period.
func (c *Config) MaintenanceTick() time.Duration {
	return time.Duration(c.Scheduler.MaintenanceTickMs) * time.Millisecond
}

// ShutdownGrace returns the time the frame loop gets to exit after an interrupt.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Scheduler.ShutdownGraceMs) * time.Millisecond
}

// TrailColor returns the parsed trail color. Invalid values yield opaque black.
func (c *Config) TrailColor() color.RGBA {
	clr, err := ParseColor(c.Trail.Color)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return clr
}

// TransparentKey returns the parsed transparency key. Invalid values yield magenta.
func (c *Config) TransparentKey() color.RGBA {
	clr, err := ParseColor(c.Overlay.TransparentKey)
	if err != nil {
		return color.RGBA{R: 0xff, B: 0xff, A: 0xff}
	}
	return clr
}

// CosmeticChanged reports whether fields that can be applied to a running
// overlay differ between c and other.
func (c *Config) CosmeticChanged(other *Config) bool {
	return c.Trail.StartWidth != other.Trail.StartWidth ||
		c.Trail.MinWidth != other.Trail.MinWidth ||
		!strings.EqualFold(c.Trail.Color, other.Trail.Color)
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	clr := color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		clr.A = b[3]
	}
	return clr, nil
}

// encodeToTOML encodes the config to TOML format.
func encodeToTOML(cfg *Config) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("# cursortrail configuration\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
