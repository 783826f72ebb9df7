// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Metadata prober names.
const (
	ProberFFmpeg = "ffmpeg"
	ProberMP4    = "mp4"
)

// Pacing modes.
const (
	ModePlay  = "play"
	ModeMagic = "magic"
)

// Pacing ranges and defaults, matching the interactive controls.
const (
	MinSpeed     = 0.07
	MaxSpeed     = 2.0
	DefaultSpeed = 1.0

	MinIntervalMs     = 1
	MaxIntervalMs     = 10000
	DefaultIntervalMs = 1000

	DefaultTickMs  = 16
	DefaultStallMs = 2000
)

// Environment variables read by ApplyEnv.
const (
	EnvFFmpegPath    = "CURSORSCAN_FFMPEG_PATH"
	EnvLogLevel      = "CURSORSCAN_LOG_LEVEL"
	EnvProber        = "CURSORSCAN_PROBER"
	EnvReadTimeoutMs = "CURSORSCAN_READ_TIMEOUT_MS"
	EnvDebugDir      = "CURSORSCAN_DEBUG_DIR"
)

// ErrInvalidConfig is returned by Validate for values that cannot be clamped.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config represents the full configuration for cursorscan.
type Config struct {
	// Decoder
	FFmpegPath    string `yaml:"ffmpeg_path"`
	Prober        string `yaml:"prober"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`

	// Pacing
	Mode        string  `yaml:"mode"`
	Speed       float64 `yaml:"speed"`
	IntervalMs  int     `yaml:"interval_ms"`
	StartOffset float64 `yaml:"start_offset"`
	MaxFrames   int     `yaml:"max_frames"`
	TickMs      int     `yaml:"tick_ms"`
	StallMs     int     `yaml:"stall_ms"`

	// Output
	ReportPath string `yaml:"report"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug      bool    `yaml:"debug"`
	DebugDir   string  `yaml:"debug_dir"`
	DebugScale float64 `yaml:"debug_scale"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Decoder
		Prober: ProberFFmpeg,

		// Pacing
		Mode:       ModePlay,
		Speed:      DefaultSpeed,
		IntervalMs: DefaultIntervalMs,
		TickMs:     DefaultTickMs,
		StallMs:    DefaultStallMs,

		// Logging
		LogLevel: "info",

		// Debug
		DebugDir:   "./debug",
		DebugScale: 1.0,
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadEnv loads .env style files into the process environment.
// With no paths ".env" is used. Missing files are not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from CURSORSCAN_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvProber); v != "" {
		c.Prober = v
	}
	if v := os.Getenv(EnvReadTimeoutMs); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ReadTimeoutMs = n
		}
	}
	if v := os.Getenv(EnvDebugDir); v != "" {
		c.DebugDir = v
	}
}

// Validate checks names and clamps numeric fields into their supported ranges.
func (c *Config) Validate() error {
	c.Prober = strings.ToLower(strings.TrimSpace(c.Prober))
	switch c.Prober {
	case "":
		c.Prober = ProberFFmpeg
	case ProberFFmpeg, ProberMP4:
	default:
		return fmt.Errorf("%w: unknown prober %q", ErrInvalidConfig, c.Prober)
	}

	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case "":
		c.Mode = ModePlay
	case ModePlay, ModeMagic:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}

	c.Speed = clampFloat(c.Speed, MinSpeed, MaxSpeed, DefaultSpeed)
	c.IntervalMs = clampInt(c.IntervalMs, MinIntervalMs, MaxIntervalMs, DefaultIntervalMs)

	if c.TickMs <= 0 {
		c.TickMs = DefaultTickMs
	}
	if c.StallMs <= 0 {
		c.StallMs = DefaultStallMs
	}
	if c.StartOffset < 0 {
		c.StartOffset = 0
	}
	if c.MaxFrames < 0 {
		c.MaxFrames = 0
	}
	if c.ReadTimeoutMs < 0 {
		c.ReadTimeoutMs = 0
	}
	if c.DebugScale <= 0 {
		c.DebugScale = 1.0
	}
	return nil
}

// clampFloat limits v to [lo, hi]; zero selects def.
func clampFloat(v, lo, hi, def float64) float64 {
	switch {
	case v == 0:
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// clampInt limits v to [lo, hi]; zero selects def.
func clampInt(v, lo, hi, def int) int {
	switch {
	case v == 0:
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
