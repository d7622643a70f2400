// Package config provides configuration for go-armpick commands.
// Values come from an optional YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for the simulator and dashboard.
const (
	DefaultPort       = "8090"
	DefaultSpeed      = 1.0
	DefaultMode       = "stack"
	DefaultTickRate   = 60.0
	DefaultLogLevel   = "info"
	DefaultDropX      = -0.35
	DefaultDropY      = -0.35
	DefaultDropZ      = 0.02
)

// Config holds the runtime configuration for the sequencer and dashboard.
type Config struct {
	// Port is the dashboard HTTP port.
	Port string `yaml:"port"`

	// Speed is the global playback multiplier (>= 1 fast-forwards).
	Speed float64 `yaml:"speed"`

	// Mode selects the placement policy ("stack" or "row").
	Mode string `yaml:"mode"`

	// TickRate is the simulation tick frequency in Hz.
	TickRate float64 `yaml:"tick_rate"`

	// DropZone is the world-space origin of the placement grid.
	DropZone [3]float64 `yaml:"drop_zone"`

	// LogLevel sets the global logger level.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:     DefaultPort,
		Speed:    DefaultSpeed,
		Mode:     DefaultMode,
		TickRate: DefaultTickRate,
		DropZone: [3]float64{DefaultDropX, DefaultDropY, DefaultDropZ},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads the YAML file at path (if any) and applies env overrides.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Speed < 1 {
		return cfg, fmt.Errorf("speed must be >= 1, got %v", cfg.Speed)
	}
	if cfg.Mode != "stack" && cfg.Mode != "row" {
		return cfg, fmt.Errorf("unknown placement mode %q", cfg.Mode)
	}
	return cfg, nil
}

// applyEnv overlays ARMPICK_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if port := os.Getenv("ARMPICK_PORT"); port != "" {
		cfg.Port = port
	}
	if mode := os.Getenv("ARMPICK_MODE"); mode != "" {
		cfg.Mode = mode
	}
	if lvl := os.Getenv("ARMPICK_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if s := os.Getenv("ARMPICK_SPEED"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			cfg.Speed = v
		}
	}
}
