// Package tracker ties scanning, locating and overlay placement together and
// runs the tracking loop that keeps the overlay attached to a compose box.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/locator"
	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/overlay"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/scanner"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnknownApp is returned for a name missing from the registry.
	ErrUnknownApp = errors.New("unknown application")
	// ErrNoComposeBox is returned by Capture and Apply when nothing was
	// located.
	ErrNoComposeBox = errors.New("no compose box found")
)

// Result is one scan-and-locate outcome. Found == false with a nil error
// means the application was scanned but no candidate qualified.
type Result struct {
	App      string               `yaml:"app"                json:"app"`
	BundleID string               `yaml:"bundle_id"          json:"bundle_id"`
	ScanID   string               `yaml:"scan_id"            json:"scan_id"`
	Elements int                  `yaml:"elements"           json:"elements"`
	Found    bool                 `yaml:"found"              json:"found"`
	Located  model.LocatedElement `yaml:"located"            json:"located"`
	Duration time.Duration        `yaml:"duration,omitempty" json:"duration,omitempty"`

	snapshot *scanner.Snapshot
}

// Snapshot returns the scan behind the result.
func (r Result) Snapshot() *scanner.Snapshot {
	return r.snapshot
}

// Capture is the text read from a compose box.
type Capture struct {
	App     string               `yaml:"app"     json:"app"`
	Text    string               `yaml:"text"    json:"text"`
	Located model.LocatedElement `yaml:"located" json:"located"`
}

// Service runs the scan → locate → position pipeline. It is safe for
// concurrent use; concurrent scans of the same application share one walk.
type Service struct {
	host    platform.Host
	config  func() *config.Config
	store   overlay.Store
	metrics *observe.Metrics
	group   singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithConfigSource reads the configuration through fn on every call, e.g.
// from a config.Watcher.
func WithConfigSource(fn func() *config.Config) Option {
	return func(s *Service) { s.config = fn }
}

// WithMetrics records scan and locate metrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a Service over host. A nil store keeps placements in
// memory.
func NewService(host platform.Host, cfg *config.Config, store overlay.Store, opts ...Option) *Service {
	if store == nil {
		store = overlay.NewMemoryStore()
	}
	s := &Service{
		host:   host,
		config: func() *config.Config { return cfg },
		store:  store,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the current configuration.
func (s *Service) Config() *config.Config {
	return s.config()
}

// Host returns the accessibility host.
func (s *Service) Host() platform.Host {
	return s.host
}

// Store returns the placement store.
func (s *Service) Store() overlay.Store {
	return s.store
}

// App resolves a registry entry by name.
func (s *Service) App(name string) (config.AppConfig, error) {
	app, ok := s.config().App(name)
	if !ok {
		return config.AppConfig{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownApp, name, s.config().AppNames())
	}
	return app, nil
}

// Hints builds locator hints for app.
func Hints(app config.AppConfig) locator.Hints {
	return locator.Hints{
		Keywords:           app.Keywords,
		TextRoles:          app.TextRoles,
		ScrollAreaFallback: app.ScrollAreaFallback,
		ScrollAreaRoles:    app.ScrollAreaRoles,
	}
}

// ScanAndLocate scans the named application and locates its compose box.
func (s *Service) ScanAndLocate(ctx context.Context, appName string) (Result, error) {
	app, err := s.App(appName)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	v, err, shared := s.group.Do(app.Name, func() (any, error) {
		return s.scanAndLocate(ctx, app)
	})
	if shared {
		observe.Logger(ctx).Debug("joined in-flight scan", "app", app.Name)
	}
	res, _ := v.(Result)
	return res, err
}

func (s *Service) scanAndLocate(ctx context.Context, app config.AppConfig) (Result, error) {
	cfg := s.config()
	ctx, span := observe.StartSpan(ctx, "scan_and_locate", trace.WithAttributes(attribute.String("app", app.Name)))
	defer span.End()

	start := time.Now()
	snap, err := scanner.ScanApplication(s.host, app.BundleIDs, cfg.MaxDepthFor(app))
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordScan(ctx, app.Name, elapsed, snap.Len(), err)
	}
	res := Result{
		App:      app.Name,
		BundleID: snap.App,
		ScanID:   snap.ScanID,
		Elements: snap.Len(),
		Duration: elapsed,
		snapshot: snap,
	}
	if err != nil {
		span.RecordError(err)
		return res, err
	}

	res.Located, res.Found = locator.Locate(snap.Elements, Hints(app))
	if s.metrics != nil {
		s.metrics.RecordLocate(ctx, app.Name, string(res.Located.Strategy))
	}
	span.SetAttributes(
		attribute.Int("elements", res.Elements),
		attribute.String("strategy", string(res.Located.Strategy)),
	)
	observe.Logger(ctx).Debug("scan and locate",
		"app", app.Name,
		"bundle_id", res.BundleID,
		"elements", res.Elements,
		"strategy", res.Located.Strategy,
		"duration", elapsed,
	)
	return res, nil
}

// Positioner returns the overlay positioner for the current config.
func (s *Service) Positioner() overlay.Positioner {
	cfg := s.config()
	return overlay.Positioner{IconSize: cfg.Overlay.IconSize, Padding: cfg.Overlay.Padding}
}

// PositionOverlay computes the overlay point for a located element against
// the main screen and saves it as the placement for appName. A failed save
// is logged; the point is still returned.
func (s *Service) PositionOverlay(ctx context.Context, appName string, loc model.LocatedElement) (model.Point, error) {
	screen, err := s.host.MainScreenSize()
	if err != nil {
		return model.Point{}, fmt.Errorf("main screen: %w", err)
	}
	pt, err := s.Positioner().Position(loc, screen.Height)
	if err != nil {
		return model.Point{}, err
	}
	if err := s.store.Save(ctx, appName, pt); err != nil {
		observe.Logger(ctx).Warn("failed to save placement", "app", appName, "err", err)
	}
	return pt, nil
}

// SavedPlacement returns the last saved overlay point for appName.
func (s *Service) SavedPlacement(ctx context.Context, appName string) (model.Point, bool, error) {
	return s.store.Load(ctx, appName)
}

// Capture reads the current text of the named application's compose box.
func (s *Service) Capture(ctx context.Context, appName string) (Capture, error) {
	res, target, node, err := s.target(ctx, appName)
	if err != nil {
		return Capture{}, err
	}
	text, err := s.host.StringAttr(node, platform.AttrValue)
	if err != nil {
		if !errors.Is(err, platform.ErrAttributeUnavailable) {
			return Capture{}, fmt.Errorf("read compose box: %w", err)
		}
		text = target.Value
	}
	return Capture{App: res.App, Text: text, Located: res.Located}, nil
}

// Apply replaces the text of the named application's compose box.
func (s *Service) Apply(ctx context.Context, appName, text string) error {
	_, _, node, err := s.target(ctx, appName)
	if err != nil {
		return err
	}
	if err := s.host.SetStringAttr(node, platform.AttrValue, text); err != nil {
		return fmt.Errorf("write compose box: %w", err)
	}
	observe.Logger(ctx).Info("applied text to compose box", "app", appName, "chars", len(text))
	return nil
}

// target locates the compose box and resolves the element that holds its
// text. A scroll-area fallback resolves to the first text input inside it.
func (s *Service) target(ctx context.Context, appName string) (Result, model.ElementDescriptor, platform.Node, error) {
	res, err := s.ScanAndLocate(ctx, appName)
	if err != nil {
		return res, model.ElementDescriptor{}, nil, err
	}
	if !res.Found {
		return res, model.ElementDescriptor{}, nil, fmt.Errorf("%s: %w", res.App, ErrNoComposeBox)
	}
	app, _ := s.App(appName)
	el := textElement(res.snapshot.Elements, res.Located.Element, Hints(app).TextRoles)
	node, ok := res.snapshot.Node(el.ID)
	if !ok {
		return res, el, nil, fmt.Errorf("element %d: %w", el.ID, platform.ErrInvalidNode)
	}
	return res, el, node, nil
}

// textElement returns el when it is a text input, otherwise the first text
// input in its subtree. Subtrees are contiguous in pre-order.
func textElement(elements []model.ElementDescriptor, el model.ElementDescriptor, textRoles []string) model.ElementDescriptor {
	if len(textRoles) == 0 {
		textRoles = locator.DefaultTextRoles
	}
	roles := model.RoleSet(textRoles)
	if roles[el.Role] {
		return el
	}
	for i := el.ID; i < len(elements); i++ {
		d := elements[i]
		if d.Depth <= el.Depth {
			break
		}
		if roles[d.Role] {
			return d
		}
	}
	return el
}
