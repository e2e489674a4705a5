package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/template"

	"github.com/mj1618/composebox/internal/model"
	"gopkg.in/yaml.v3"
)

// ValidProviders lists the LLM providers the transform package can build.
var ValidProviders = []string{"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq"}

// ValidBackends lists the placement store backends.
var ValidBackends = []string{"memory", "file", "sqlite"}

// Load reads the YAML file at path on top of the built-in defaults. An empty
// path returns the defaults; so does a missing file at the default location.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath() {
			slog.Debug("no config file, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := decodeOnto(Default(), r)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeOnto(cfg *Config, r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Scan
	if cfg.Scan.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("scan.max_depth %d must be at least 1", cfg.Scan.MaxDepth))
	} else if cfg.Scan.MaxDepth > 60 {
		slog.Warn("scan.max_depth is very large; scans of cyclic trees grow exponentially with depth", "max_depth", cfg.Scan.MaxDepth)
	}
	if cfg.Scan.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("scan.poll_interval %s must be positive", cfg.Scan.PollInterval))
	}
	if cfg.Scan.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("scan.retry_attempts %d must not be negative", cfg.Scan.RetryAttempts))
	}
	if cfg.Scan.RetryDelay < 0 || cfg.Scan.SettleDelay < 0 || cfg.Scan.Debounce < 0 {
		errs = append(errs, errors.New("scan delays must not be negative"))
	}

	// Overlay
	if cfg.Overlay.IconSize <= 0 {
		errs = append(errs, fmt.Errorf("overlay.icon_size %.1f must be positive", cfg.Overlay.IconSize))
	}
	if cfg.Overlay.Padding < 0 {
		errs = append(errs, fmt.Errorf("overlay.padding %.1f must not be negative", cfg.Overlay.Padding))
	}

	// Placement
	if !slices.Contains(ValidBackends, strings.ToLower(cfg.Placement.Backend)) {
		errs = append(errs, fmt.Errorf("placement.backend %q is invalid; valid values: %s", cfg.Placement.Backend, strings.Join(ValidBackends, ", ")))
	}

	// Apps
	if len(cfg.Apps) == 0 {
		errs = append(errs, errors.New("apps: at least one application is required"))
	}
	seen := make(map[string]int, len(cfg.Apps))
	for i, app := range cfg.Apps {
		prefix := fmt.Sprintf("apps[%d]", i)
		if app.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			key := strings.ToLower(app.Name)
			if prev, ok := seen[key]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of apps[%d]", prefix, app.Name, prev))
			}
			seen[key] = i
		}
		if len(app.BundleIDs) == 0 {
			errs = append(errs, fmt.Errorf("%s.bundle_ids must not be empty", prefix))
		}
		if app.MaxDepth < 0 {
			errs = append(errs, fmt.Errorf("%s.max_depth %d must not be negative", prefix, app.MaxDepth))
		}
		for _, r := range append(slices.Clone(app.TextRoles), app.ScrollAreaRoles...) {
			if _, meta := model.MetaRoles[r]; !meta && model.MapRole(r) == model.RoleOther && r != model.RoleOther {
				slog.Warn("unknown role tag in app config", "app", app.Name, "role", r)
			}
		}
		if len(app.Keywords) == 0 && !app.ScrollAreaFallback {
			slog.Warn("app has no keywords; locating relies on focus and size", "app", app.Name)
		}
	}

	// LLM
	if cfg.LLM.Provider != "" && !slices.Contains(ValidProviders, cfg.LLM.Provider) {
		errs = append(errs, fmt.Errorf("llm.provider %q is invalid; valid values: %s", cfg.LLM.Provider, strings.Join(ValidProviders, ", ")))
	}
	if cfg.LLM.Timeout < 0 {
		errs = append(errs, fmt.Errorf("llm.timeout %s must not be negative", cfg.LLM.Timeout))
	}
	if _, err := template.New("translate").Parse(cfg.LLM.Prompts.Translate); err != nil {
		errs = append(errs, fmt.Errorf("llm.prompts.translate: %w", err))
	}
	if cfg.LLM.APIKeyEnv != "" && os.Getenv(cfg.LLM.APIKeyEnv) == "" && cfg.LLM.Provider != "ollama" {
		slog.Debug("llm api key variable is not set; transform will fail", "env", cfg.LLM.APIKeyEnv)
	}

	return errors.Join(errs...)
}

// EncodeYAML writes cfg as YAML.
func EncodeYAML(w io.Writer, cfg *Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
