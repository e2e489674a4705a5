package tracker

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/platform/fixture"
)

// countingHost counts scans; every scan starts with one trust check.
type countingHost struct {
	*fixture.Host
	scans atomic.Int32
}

func (h *countingHost) IsTrusted() bool {
	h.scans.Add(1)
	return h.Host.IsTrusted()
}

// slowHost makes every scan take at least delay, longer than the retry delay
// in the tests that use it.
type slowHost struct {
	*countingHost
	delay time.Duration
}

func (h *slowHost) IsTrusted() bool {
	time.Sleep(h.delay)
	return h.countingHost.IsTrusted()
}

const blankTree = `
frontmost: com.example.blank
screen: {w: 1440, h: 900}
apps:
  - bundle_id: com.example.blank
    focused_window: w
    windows:
      - id: w
        role: AXWindow
        position: {x: 0, y: 0}
        size: {w: 800, h: 600}
        children:
          - role: AXButton
            title: OK
`

func desktopHost(t *testing.T) *countingHost {
	t.Helper()
	h, err := fixture.Sample("desktop")
	if err != nil {
		t.Fatal(err)
	}
	return &countingHost{Host: h}
}

func blankHost(t *testing.T) *countingHost {
	t.Helper()
	h, err := fixture.Parse(strings.NewReader(blankTree))
	if err != nil {
		t.Fatal(err)
	}
	return &countingHost{Host: h}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Scan.PollInterval = time.Hour
	cfg.Scan.Debounce = 10 * time.Millisecond
	cfg.Scan.RetryDelay = 10 * time.Millisecond
	cfg.Scan.SettleDelay = 10 * time.Millisecond
	cfg.Apps = append(cfg.Apps, config.AppConfig{
		Name:      "blank",
		BundleIDs: []string{"com.example.blank"},
		Keywords:  []string{"message"},
	})
	return cfg
}

// startCoordinator runs c until the test ends.
func startCoordinator(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func nextUpdate(t *testing.T, c *Coordinator, timeout time.Duration) Update {
	t.Helper()
	select {
	case u, ok := <-c.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return u
	case <-time.After(timeout):
		t.Fatal("no update within timeout")
	}
	return Update{}
}

func expectNoUpdate(t *testing.T, c *Coordinator, wait time.Duration) {
	t.Helper()
	select {
	case u := <-c.Updates():
		t.Fatalf("unexpected update %+v", u)
	case <-time.After(wait):
	}
}
