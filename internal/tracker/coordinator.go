package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/platform"
	"golang.org/x/time/rate"
)

// Coordinator keeps the overlay attached to the tracked application's
// compose box. All tracking state is owned by the goroutine running Run;
// other goroutines talk to it through Trigger, Track, HandleEvent and
// Request. Scans run on worker goroutines and report back over a channel,
// so at most one scan is in flight.
type Coordinator struct {
	svc     *Service
	metrics *observe.Metrics

	updates  chan Update
	commands chan Command
	events   chan Event
	results  chan scanOutcome
	captures chan Update
	notify   chan struct{}

	mu      sync.Mutex
	pending *pendingTrigger

	// Owned by Run.
	app       string
	last      *model.Point
	inFlight  bool
	attempts  int
	onSaved   bool
	queued    *pendingTrigger
	debounceT *time.Timer
	retryT    *time.Timer
	limiter   *rate.Limiter
}

// pendingTrigger is a set of collapsed triggers. fresh marks that one of
// them was a new forced trigger rather than a retry, which restarts the
// retry budget.
type pendingTrigger struct {
	reason Reason
	forced bool
	fresh  bool
}

func (p *pendingTrigger) merge(reason Reason, forced bool) {
	if forced || !p.forced {
		p.reason = reason
	}
	p.forced = p.forced || forced
	p.fresh = p.fresh || (forced && reason != ReasonRetry)
}

func (p *pendingTrigger) mergeAll(q *pendingTrigger) {
	p.merge(q.reason, q.forced)
	p.fresh = p.fresh || q.fresh
}

type scanOutcome struct {
	app     string
	reason  Reason
	forced  bool
	res     Result
	point   model.Point
	located bool
	err     error
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithApp sets the initially tracked application.
func WithApp(name string) CoordinatorOption {
	return func(c *Coordinator) { c.app = name }
}

// WithCoordinatorMetrics counts published updates.
func WithCoordinatorMetrics(m *observe.Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator returns a Coordinator over svc. Call Run to start it.
func NewCoordinator(svc *Service, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		svc:      svc,
		updates:  make(chan Update, 16),
		commands: make(chan Command, 8),
		events:   make(chan Event, 16),
		results:  make(chan scanOutcome, 1),
		captures: make(chan Update, 1),
		notify:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Updates returns the channel of published updates. It is closed when Run
// returns.
func (c *Coordinator) Updates() <-chan Update {
	return c.updates
}

// Trigger requests a scan. Triggers arriving inside the debounce window are
// collapsed into one; the collapsed trigger is forced if any of them was.
// Trigger never blocks.
func (c *Coordinator) Trigger(reason Reason, forced bool) {
	c.mu.Lock()
	if c.pending == nil {
		c.pending = &pendingTrigger{}
	}
	c.pending.merge(reason, forced)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Track switches the tracked application and forces a scan.
func (c *Coordinator) Track(appName string) {
	select {
	case c.events <- Event{Kind: eventTrack, App: appName}:
	default:
		slog.Warn("coordinator busy, dropping track request", "app", appName)
	}
}

// HandleEvent feeds a workspace event to the coordinator.
func (c *Coordinator) HandleEvent(ev Event) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("coordinator busy, dropping workspace event", "kind", ev.Kind, "bundle_id", ev.BundleID)
	}
}

// Request routes a shell command through the coordinator.
func (c *Coordinator) Request(cmd Command) {
	select {
	case c.commands <- cmd:
	default:
		slog.Warn("coordinator busy, dropping command", "kind", cmd.Kind)
	}
}

// Run owns the tracking state until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.updates)

	cfg := c.svc.Config()
	c.limiter = rate.NewLimiter(rate.Every(max(cfg.Scan.Debounce, time.Millisecond)), 1)
	ticker := time.NewTicker(cfg.Scan.PollInterval)
	defer ticker.Stop()
	defer c.stopTimers()

	slog.Info("coordinator started", "app", c.app, "poll_interval", cfg.Scan.PollInterval, "debounce", cfg.Scan.Debounce)
	if c.app != "" {
		c.Trigger(ReasonManual, true)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("coordinator stopped")
			return nil

		case <-ticker.C:
			c.Trigger(ReasonTimer, false)

		case <-c.notify:
			c.mu.Lock()
			p := c.pending
			c.pending = nil
			c.mu.Unlock()
			if p != nil {
				c.schedule(p)
			}

		case <-timerC(c.debounceT):
			c.debounceT = nil
			p := c.queued
			c.queued = nil
			if p != nil {
				c.dispatch(ctx, p)
			}

		case <-timerC(c.retryT):
			c.retryT = nil
			c.dispatch(ctx, &pendingTrigger{reason: ReasonRetry, forced: true})

		case ev := <-c.events:
			c.handleEvent(ctx, ev)

		case cmd := <-c.commands:
			c.handleCommand(ctx, cmd)

		case u := <-c.captures:
			c.publish(ctx, u)

		case out := <-c.results:
			c.inFlight = false
			c.handleOutcome(ctx, out)
			if c.queued != nil && c.debounceT == nil {
				p := c.queued
				c.queued = nil
				c.dispatch(ctx, p)
			}
		}
	}
}

// schedule merges p into the queued trigger and arms the debounce timer
// from the rate limiter's reservation.
func (c *Coordinator) schedule(p *pendingTrigger) {
	if c.queued == nil {
		c.queued = &pendingTrigger{}
	}
	c.queued.mergeAll(p)
	if c.debounceT != nil {
		return
	}
	delay := c.limiter.Reserve().Delay()
	c.debounceT = time.NewTimer(delay)
}

// dispatch starts a scan worker unless one is running; a busy coordinator
// keeps the trigger queued until the running scan reports.
func (c *Coordinator) dispatch(ctx context.Context, p *pendingTrigger) {
	if c.app == "" {
		return
	}
	if c.inFlight {
		if c.queued == nil {
			c.queued = &pendingTrigger{}
		}
		c.queued.mergeAll(p)
		return
	}
	if p.fresh {
		c.stopRetry()
	}
	c.inFlight = true
	app, reason, forced := c.app, p.reason, p.forced
	go func() {
		out := scanOutcome{app: app, reason: reason, forced: forced}
		out.res, out.err = c.svc.ScanAndLocate(ctx, app)
		if out.err == nil && out.res.Found {
			pt, err := c.svc.PositionOverlay(ctx, app, out.res.Located)
			if err == nil {
				out.point, out.located = pt, true
			} else {
				slog.Debug("located element has no usable geometry", "app", app, "err", err)
			}
		}
		select {
		case c.results <- out:
		case <-ctx.Done():
		}
	}()
}

func (c *Coordinator) handleOutcome(ctx context.Context, out scanOutcome) {
	if out.app != c.app {
		return
	}
	cfg := c.svc.Config()

	switch {
	case errors.Is(out.err, platform.ErrPermissionDenied):
		c.stopRetry()
		c.publish(ctx, Update{Kind: UpdateError, App: out.app, Reason: out.reason, Err: out.err, Error: out.err.Error()})
		return
	case errors.Is(out.err, platform.ErrTargetNotRunning):
		c.stopRetry()
		c.hide(ctx, out.app, out.reason)
		return
	case out.err != nil && !errors.Is(out.err, context.Canceled):
		slog.Warn("scan failed", "app", out.app, "err", out.err)
	case out.located:
		c.stopRetry()
		c.onSaved = false
		pt := out.point
		c.last = &pt
		c.publish(ctx, Update{
			Kind:     UpdatePosition,
			App:      out.app,
			Reason:   out.reason,
			Point:    &pt,
			Source:   SourceScan,
			Strategy: out.res.Located.Strategy,
		})
		return
	}

	if !out.forced {
		// A retry sequence or the saved placement keeps the overlay up
		// until a forced scan settles it.
		if c.retrying() || c.onSaved {
			return
		}
		c.hide(ctx, out.app, out.reason)
		return
	}
	if c.attempts < cfg.Scan.RetryAttempts {
		c.attempts++
		slog.Debug("compose box not found, retrying", "app", out.app, "attempt", c.attempts, "delay", cfg.Scan.RetryDelay)
		if c.retryT != nil {
			c.retryT.Stop()
		}
		c.retryT = time.NewTimer(cfg.Scan.RetryDelay)
		return
	}

	attempts := c.attempts
	c.attempts = 0
	pt, ok, err := c.svc.SavedPlacement(ctx, out.app)
	if err != nil {
		slog.Warn("failed to load saved placement", "app", out.app, "err", err)
	}
	if !ok || err != nil {
		c.hide(ctx, out.app, out.reason)
		return
	}
	c.last = &pt
	c.onSaved = true
	c.publish(ctx, Update{
		Kind:     UpdatePosition,
		App:      out.app,
		Reason:   out.reason,
		Point:    &pt,
		Source:   SourceSaved,
		Attempts: attempts,
	})
}

func (c *Coordinator) handleEvent(ctx context.Context, ev Event) {
	cfg := c.svc.Config()
	switch ev.Kind {
	case eventTrack:
		c.switchApp(ctx, ev.App)
		c.Trigger(ReasonManual, true)
	case EventFocus:
		app, ok := cfg.AppForBundle(ev.BundleID)
		if !ok {
			return
		}
		c.switchApp(ctx, app.Name)
		c.Trigger(ReasonFocus, true)
	case EventLaunch:
		app, ok := cfg.AppForBundle(ev.BundleID)
		if !ok || (c.app != "" && app.Name != c.app) {
			return
		}
		if c.app == "" {
			c.app = app.Name
		}
		time.AfterFunc(cfg.Scan.SettleDelay, func() { c.Trigger(ReasonLaunch, true) })
	case EventTerminate:
		app, ok := cfg.AppForBundle(ev.BundleID)
		if !ok || app.Name != c.app {
			return
		}
		c.stopRetry()
		c.hide(ctx, c.app, ReasonTerminate)
	}
}

func (c *Coordinator) switchApp(ctx context.Context, name string) {
	if name == c.app {
		return
	}
	if c.app != "" && c.last != nil {
		c.hide(ctx, c.app, ReasonFocus)
	}
	slog.Info("tracking application", "app", name, "previous", c.app)
	c.app = name
	c.last = nil
	c.onSaved = false
	c.stopRetry()
}

func (c *Coordinator) handleCommand(ctx context.Context, cmd Command) {
	switch cmd.Kind {
	case CommandClose:
		c.publish(ctx, Update{Kind: UpdateCommand, App: c.app, Command: &cmd})
		c.hide(ctx, c.app, ReasonManual)
	case CommandCapture:
		app := c.app
		if app == "" {
			c.publish(ctx, Update{Kind: UpdateError, Command: &cmd, Error: "no application is tracked"})
			return
		}
		go func() {
			u := Update{Kind: UpdateCommand, App: app, Command: &cmd}
			capture, err := c.svc.Capture(ctx, app)
			if err != nil {
				u.Kind, u.Err, u.Error = UpdateError, err, err.Error()
			} else {
				u.Text = capture.Text
			}
			select {
			case c.captures <- u:
			case <-ctx.Done():
			}
		}()
	default:
		c.publish(ctx, Update{Kind: UpdateCommand, App: c.app, Command: &cmd})
	}
}

func (c *Coordinator) hide(ctx context.Context, app string, reason Reason) {
	c.last = nil
	c.onSaved = false
	c.publish(ctx, Update{Kind: UpdateHide, App: app, Reason: reason})
}

func (c *Coordinator) publish(ctx context.Context, u Update) {
	u.At = time.Now()
	if c.metrics != nil {
		c.metrics.RecordUpdate(ctx, string(u.Kind))
	}
	select {
	case c.updates <- u:
	case <-ctx.Done():
	}
}

func (c *Coordinator) retrying() bool {
	return c.retryT != nil || c.attempts > 0
}

func (c *Coordinator) stopRetry() {
	if c.retryT != nil {
		c.retryT.Stop()
		c.retryT = nil
	}
	c.attempts = 0
}

func (c *Coordinator) stopTimers() {
	c.stopRetry()
	if c.debounceT != nil {
		c.debounceT.Stop()
		c.debounceT = nil
	}
}

// timerC returns t's channel, or nil (blocks forever in select) when t is
// not armed.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
