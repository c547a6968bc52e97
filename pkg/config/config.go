// Package config holds the tunable parameters of bigchart.
//
// Values are layered, lowest precedence first:
//  1. DefaultConfig
//  2. Optional TOML file ($XDG_CONFIG_HOME/bigchart/config.toml)
//  3. Environment variables (BIGCHART_*)
//  4. Code / command-line flags
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/BYTE-6D65/bigchart/pkg/decimate"
)

// Config holds every tunable parameter.
type Config struct {
	// Decimation
	AverageMaxPoints int    `env:"BIGCHART_AVERAGE_MAX_POINTS" default:"2000"` // line datasets
	RandomMaxPoints  int    `env:"BIGCHART_RANDOM_MAX_POINTS" default:"2000"`  // scatter datasets
	AlertMaxPoints   int    `env:"BIGCHART_ALERT_MAX_POINTS" default:"1000"`   // alert bands
	RandomSeed       uint64 `env:"BIGCHART_RANDOM_SEED" default:"0"`           // 0 = unseeded

	// Frame loop
	FrameInterval time.Duration `env:"BIGCHART_FRAME_INTERVAL" default:"16ms"`

	// Journal
	JournalCapacity int `env:"BIGCHART_JOURNAL_CAPACITY" default:"4096"`

	// Rendering
	ChartWidth  int `env:"BIGCHART_CHART_WIDTH" default:"80"`
	ChartHeight int `env:"BIGCHART_CHART_HEIGHT" default:"12"`

	// Logging
	LogLevel string `env:"BIGCHART_LOG_LEVEL" default:"info"`
	LogJSON  bool   `env:"BIGCHART_LOG_JSON" default:"false"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		AverageMaxPoints: decimate.DefaultLength,
		RandomMaxPoints:  decimate.DefaultLength,
		AlertMaxPoints:   decimate.DefaultLength / 2,
		RandomSeed:       0,

		FrameInterval: 16 * time.Millisecond,

		JournalCapacity: 4096,

		ChartWidth:  80,
		ChartHeight: 12,

		LogLevel: "info",
		LogJSON:  false,
	}
}

// fileConfig mirrors Config for TOML decoding. Pointer fields distinguish
// "absent" from a zero value.
type fileConfig struct {
	Decimation struct {
		AverageMaxPoints *int    `toml:"average_max_points"`
		RandomMaxPoints  *int    `toml:"random_max_points"`
		AlertMaxPoints   *int    `toml:"alert_max_points"`
		RandomSeed       *uint64 `toml:"random_seed"`
	} `toml:"decimation"`

	Frame struct {
		Interval        *string `toml:"interval"`
		JournalCapacity *int    `toml:"journal_capacity"`
	} `toml:"frame"`

	Chart struct {
		Width  *int `toml:"width"`
		Height *int `toml:"height"`
	} `toml:"chart"`

	Log struct {
		Level *string `toml:"level"`
		JSON  *bool   `toml:"json"`
	} `toml:"log"`
}

// Path returns the resolved path of the config file, or "" when no home
// directory can be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "bigchart", "config.toml")
}

// Load returns the defaults overlaid with the config file at Path and then
// with BIGCHART_* environment variables. A missing file is not an error.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if path := Path(); path != "" {
		if err := cfg.MergeFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	cfg.MergeEnv()
	return cfg, cfg.Validate()
}

// LoadFile returns the defaults overlaid with the TOML file at path.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.MergeFile(path); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFromEnv returns the defaults overridden by any BIGCHART_* variables.
func LoadFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.MergeEnv()
	return cfg, cfg.Validate()
}

// MergeFile overlays the keys present in the TOML file at path.
func (c *Config) MergeFile(path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	if v := f.Decimation.AverageMaxPoints; v != nil {
		c.AverageMaxPoints = *v
	}
	if v := f.Decimation.RandomMaxPoints; v != nil {
		c.RandomMaxPoints = *v
	}
	if v := f.Decimation.AlertMaxPoints; v != nil {
		c.AlertMaxPoints = *v
	}
	if v := f.Decimation.RandomSeed; v != nil {
		c.RandomSeed = *v
	}
	if v := f.Frame.Interval; v != nil {
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("config %s: frame.interval: %w", path, err)
		}
		c.FrameInterval = d
	}
	if v := f.Frame.JournalCapacity; v != nil {
		c.JournalCapacity = *v
	}
	if v := f.Chart.Width; v != nil {
		c.ChartWidth = *v
	}
	if v := f.Chart.Height; v != nil {
		c.ChartHeight = *v
	}
	if v := f.Log.Level; v != nil {
		c.LogLevel = *v
	}
	if v := f.Log.JSON; v != nil {
		c.LogJSON = *v
	}
	return nil
}

// MergeEnv overlays any BIGCHART_* variables. Unparseable or out-of-range
// values are ignored.
func (c *Config) MergeEnv() {
	// Decimation
	if v := os.Getenv("BIGCHART_AVERAGE_MAX_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AverageMaxPoints = n
		}
	}
	if v := os.Getenv("BIGCHART_RANDOM_MAX_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RandomMaxPoints = n
		}
	}
	if v := os.Getenv("BIGCHART_ALERT_MAX_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AlertMaxPoints = n
		}
	}
	if v := os.Getenv("BIGCHART_RANDOM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.RandomSeed = n
		}
	}

	// Frame loop
	if v := os.Getenv("BIGCHART_FRAME_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.FrameInterval = d
		}
	}
	if v := os.Getenv("BIGCHART_JOURNAL_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.JournalCapacity = n
		}
	}

	// Rendering
	if v := os.Getenv("BIGCHART_CHART_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ChartWidth = n
		}
	}
	if v := os.Getenv("BIGCHART_CHART_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ChartHeight = n
		}
	}

	// Logging
	if v := os.Getenv("BIGCHART_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BIGCHART_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogJSON = b
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.AverageMaxPoints < 1 {
		return fmt.Errorf("average max points must be >= 1, got %d", c.AverageMaxPoints)
	}
	if c.RandomMaxPoints < 1 {
		return fmt.Errorf("random max points must be >= 1, got %d", c.RandomMaxPoints)
	}
	if c.AlertMaxPoints < 1 {
		return fmt.Errorf("alert max points must be >= 1, got %d", c.AlertMaxPoints)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be > 0, got %s", c.FrameInterval)
	}
	if c.JournalCapacity < 1 {
		return fmt.Errorf("journal capacity must be >= 1, got %d", c.JournalCapacity)
	}
	if c.ChartWidth < 10 || c.ChartHeight < 4 {
		return fmt.Errorf("chart size must be at least 10x4, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// String returns a human-readable summary of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf(`bigchart configuration:
  Decimation:
    Average max points: %d
    Random max points:  %d
    Alert max points:   %d
    Random seed:        %s

  Frame loop:
    Interval:         %s
    Journal capacity: %d

  Chart: %dx%d

  Log: %s (json=%t)
`,
		c.AverageMaxPoints,
		c.RandomMaxPoints,
		c.AlertMaxPoints,
		formatSeed(c.RandomSeed),
		c.FrameInterval,
		c.JournalCapacity,
		c.ChartWidth, c.ChartHeight,
		c.LogLevel, c.LogJSON,
	)
}

func formatSeed(seed uint64) string {
	if seed == 0 {
		return "unseeded"
	}
	return strconv.FormatUint(seed, 10)
}
