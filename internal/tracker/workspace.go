package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mj1618/composebox/internal/platform"
)

// EventKind classifies workspace events.
type EventKind string

const (
	EventFocus     EventKind = "focus"
	EventLaunch    EventKind = "launch"
	EventTerminate EventKind = "terminate"

	eventTrack EventKind = "track"
)

// Event is a workspace change for a bundle id.
type Event struct {
	Kind     EventKind `yaml:"kind"                json:"kind"`
	BundleID string    `yaml:"bundle_id,omitempty" json:"bundle_id,omitempty"`
	App      string    `yaml:"app,omitempty"       json:"app,omitempty"`
}

// WorkspaceWatcher synthesizes focus, launch and terminate events by polling
// the host's frontmost application and the running state of the watched
// bundles.
type WorkspaceWatcher struct {
	host     platform.Host
	interval time.Duration
	bundles  func() []string

	primed    bool
	frontmost string
	running   map[string]bool
}

// NewWorkspaceWatcher watches the bundles returned by bundles, which is
// re-read on every poll so registry reloads take effect.
func NewWorkspaceWatcher(host platform.Host, interval time.Duration, bundles func() []string) *WorkspaceWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &WorkspaceWatcher{
		host:     host,
		interval: interval,
		bundles:  bundles,
		running:  make(map[string]bool),
	}
}

// Poll takes one observation and returns the events since the previous one.
// The first poll reports the frontmost application as a focus event and
// records running state without launch events.
func (w *WorkspaceWatcher) Poll() []Event {
	var events []Event

	for _, id := range w.bundles() {
		_, err := w.host.FindRunningApplication(id)
		running := err == nil
		prev, seen := w.running[id]
		w.running[id] = running
		if !seen || !w.primed || prev == running {
			continue
		}
		kind := EventTerminate
		if running {
			kind = EventLaunch
		}
		events = append(events, Event{Kind: kind, BundleID: id})
	}

	front, err := w.host.FrontmostBundleID()
	if err != nil {
		slog.Debug("frontmost application unavailable", "err", err)
	} else if front != w.frontmost {
		w.frontmost = front
		if front != "" {
			events = append(events, Event{Kind: EventFocus, BundleID: front})
		}
	}

	w.primed = true
	return events
}

// Run polls until ctx is done, passing each event to emit.
func (w *WorkspaceWatcher) Run(ctx context.Context, emit func(Event)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		for _, ev := range w.Poll() {
			slog.Debug("workspace event", "kind", ev.Kind, "bundle_id", ev.BundleID)
			emit(ev)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
