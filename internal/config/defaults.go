package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decodeOnto(&Config{}, bytes.NewReader(defaultsYAML))
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "composebox", "config.yaml")
}

// PlacementPath returns the configured placement path, or a per-user default
// for the file and sqlite backends.
func (c *Config) PlacementPath() string {
	if c.Placement.Path != "" {
		return c.Placement.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	name := "placements.json"
	if c.Placement.Backend == "sqlite" {
		name = "placements.db"
	}
	return filepath.Join(dir, "composebox", name)
}
