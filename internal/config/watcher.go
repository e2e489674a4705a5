package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync/atomic"
	"time"
)

// DefaultWatchInterval is how often a Watcher stats the config file.
const DefaultWatchInterval = 2 * time.Second

// Reload describes one accepted config change.
type Reload struct {
	Old, New *Config
	// Apps lists registry entries whose locator hints were added, removed
	// or edited, in the new file's order followed by removed names.
	Apps []string
}

// Watcher keeps the newest valid version of a config file. Keyword lists
// track target applications' UI and change between releases, so they are
// picked up without restarting the tracker. A file that fails to load or
// validate leaves the previous config in place.
type Watcher struct {
	path     string
	interval time.Duration
	onReload func(Reload)

	current atomic.Pointer[Config]
	seen    stamp
}

// stamp identifies one version of the file on disk.
type stamp struct {
	mod  time.Time
	size int64
	sum  [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// OnReload registers fn to run on the Run goroutine after each accepted change.
func OnReload(fn func(Reload)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher loads path. Call Run to start following it.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{path: path, interval: DefaultWatchInterval}
	for _, opt := range opts {
		opt(w)
	}
	cfg, st, err := w.read()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	w.current.Store(cfg)
	w.seen = st
	return w, nil
}

// Current returns the newest valid config. It is safe for concurrent use
// and matches the func() *Config shape the tracker takes as a config source.
func (w *Watcher) Current() *Config {
	return w.current.Load()
}

// Run polls the file until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		slog.Warn("config file unavailable, keeping current config", "path", w.path, "err", err)
		return
	}
	if info.ModTime().Equal(w.seen.mod) && info.Size() == w.seen.size {
		return
	}

	cfg, st, err := w.read()
	if err != nil {
		slog.Warn("config file rejected, keeping current config", "path", w.path, "err", err)
		// Warn once per edit, not once per tick.
		w.seen.mod, w.seen.size = info.ModTime(), info.Size()
		return
	}
	sameContent := st.sum == w.seen.sum
	w.seen = st
	if sameContent {
		return
	}

	old := w.current.Swap(cfg)
	r := Reload{Old: old, New: cfg, Apps: ChangedApps(old, cfg)}
	slog.Info("config reloaded", "path", w.path, "changed_apps", r.Apps)
	if w.onReload != nil {
		w.onReload(r)
	}
}

func (w *Watcher) read() (*Config, stamp, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, stamp{}, err
	}
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, stamp{}, err
	}
	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, stamp{}, err
	}
	return cfg, stamp{mod: info.ModTime(), size: info.Size(), sum: sha256.Sum256(data)}, nil
}

// ChangedApps returns the names of registry entries whose bundle ids,
// keywords, roles, fallback or depth differ between old and new.
func ChangedApps(old, new *Config) []string {
	var changed []string
	for _, app := range new.Apps {
		prev, ok := old.App(app.Name)
		if !ok || !sameHints(prev, app) {
			changed = append(changed, app.Name)
		}
	}
	for _, app := range old.Apps {
		if _, ok := new.App(app.Name); !ok {
			changed = append(changed, app.Name)
		}
	}
	return changed
}

func sameHints(a, b AppConfig) bool {
	return slices.Equal(a.BundleIDs, b.BundleIDs) &&
		slices.Equal(a.Keywords, b.Keywords) &&
		slices.Equal(a.TextRoles, b.TextRoles) &&
		slices.Equal(a.ScrollAreaRoles, b.ScrollAreaRoles) &&
		a.ScrollAreaFallback == b.ScrollAreaFallback &&
		a.MaxDepth == b.MaxDepth
}
