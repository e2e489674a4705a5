// Package config holds the target application registry and runtime settings.
package config

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l to a slog level; unknown values map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration document.
type Config struct {
	LogLevel  LogLevel        `yaml:"log_level"`
	Scan      ScanConfig      `yaml:"scan"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Placement PlacementConfig `yaml:"placement"`
	Apps      []AppConfig     `yaml:"apps"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ScanConfig tunes scanning and the tracking loop.
type ScanConfig struct {
	MaxDepth      int           `yaml:"max_depth"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	// SettleDelay is waited after an application launches before scanning.
	SettleDelay time.Duration `yaml:"settle_delay"`
	Debounce    time.Duration `yaml:"debounce"`
}

// OverlayConfig is the icon geometry in points.
type OverlayConfig struct {
	IconSize float64 `yaml:"icon_size"`
	Padding  float64 `yaml:"padding"`
}

// PlacementConfig selects where overlay placements are persisted.
type PlacementConfig struct {
	Backend string `yaml:"backend"` // memory, file or sqlite
	Path    string `yaml:"path,omitempty"`
}

// AppConfig is one entry of the target registry.
type AppConfig struct {
	Name               string   `yaml:"name"`
	BundleIDs          []string `yaml:"bundle_ids"`
	Keywords           []string `yaml:"keywords,omitempty"`
	TextRoles          []string `yaml:"text_roles,omitempty"`
	ScrollAreaFallback bool     `yaml:"scroll_area_fallback,omitempty"`
	ScrollAreaRoles    []string `yaml:"scroll_area_roles,omitempty"`
	// MaxDepth overrides scan.max_depth when positive.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// LLMConfig selects the text-transform provider.
type LLMConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`
	Prompts   Prompts       `yaml:"prompts"`
	// TargetLanguage is the default for translate requests.
	TargetLanguage string `yaml:"target_language"`
}

// Prompts are the system prompts per transform mode. Translate is a
// text/template receiving .Language.
type Prompts struct {
	Grammar   string `yaml:"grammar"`
	Translate string `yaml:"translate"`
}

// App returns the registry entry with the given name (case-insensitive).
func (c *Config) App(name string) (AppConfig, bool) {
	for _, a := range c.Apps {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return AppConfig{}, false
}

// AppForBundle returns the registry entry that lists bundleID.
func (c *Config) AppForBundle(bundleID string) (AppConfig, bool) {
	for _, a := range c.Apps {
		if slices.Contains(a.BundleIDs, bundleID) {
			return a, true
		}
	}
	return AppConfig{}, false
}

// AppNames returns the registry names in order.
func (c *Config) AppNames() []string {
	names := make([]string, 0, len(c.Apps))
	for _, a := range c.Apps {
		names = append(names, a.Name)
	}
	return names
}

// BundleIDs returns every bundle id in the registry, in registry order.
func (c *Config) BundleIDs() []string {
	var ids []string
	for _, a := range c.Apps {
		ids = append(ids, a.BundleIDs...)
	}
	return ids
}

// MaxDepthFor returns the effective scan depth for app.
func (c *Config) MaxDepthFor(app AppConfig) int {
	if app.MaxDepth > 0 {
		return app.MaxDepth
	}
	return c.Scan.MaxDepth
}
