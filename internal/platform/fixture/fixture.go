// Package fixture implements platform.Host over a synthetic accessibility
// tree described in YAML. It backs the tests and the --fixture CLI flag, so
// the whole pipeline runs without a live macOS session.
//
// Nodes may carry an id and be referenced from elsewhere with ref, which
// makes cyclic trees possible:
//
//	apps:
//	  - bundle_id: com.microsoft.teams2
//	    focused_window: main
//	    windows:
//	      - id: main
//	        role: AXWindow
//	        children:
//	          - role: AXTextArea
//	            description: Type a message
//	            position: {x: 100, y: 50}
//	            size: {w: 300, h: 40}
//	          - ref: main
package fixture

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/platform"
	"gopkg.in/yaml.v3"
)

// NodeDef describes one node. Nil attributes are reported as unavailable.
type NodeDef struct {
	ID          string       `yaml:"id,omitempty"`
	Ref         string       `yaml:"ref,omitempty"`
	Role        string       `yaml:"role,omitempty"`
	Title       *string      `yaml:"title,omitempty"`
	Value       *string      `yaml:"value,omitempty"`
	Description *string      `yaml:"description,omitempty"`
	Identifier  *string      `yaml:"identifier,omitempty"`
	Position    *model.Point `yaml:"position,omitempty"`
	Size        *model.Size  `yaml:"size,omitempty"`
	Enabled     *bool        `yaml:"enabled,omitempty"`
	Focused     *bool        `yaml:"focused,omitempty"`
	Children    []*NodeDef   `yaml:"children,omitempty"`
}

// AppDef describes one application.
type AppDef struct {
	BundleID      string     `yaml:"bundle_id"`
	Name          string     `yaml:"name,omitempty"`
	Running       *bool      `yaml:"running,omitempty"` // nil = running
	FocusedWindow string     `yaml:"focused_window,omitempty"`
	Windows       []*NodeDef `yaml:"windows,omitempty"`
	Children      []*NodeDef `yaml:"children,omitempty"` // children of the application node
}

// Tree is the top-level fixture document.
type Tree struct {
	Trusted   *bool      `yaml:"trusted,omitempty"` // nil = trusted
	Frontmost string     `yaml:"frontmost,omitempty"`
	Screen    model.Size `yaml:"screen,omitempty"`
	Apps      []*AppDef  `yaml:"apps"`
}

// node is the Host's handle type.
type node struct {
	def *NodeDef
	app *AppDef
}

// Host implements platform.Host over a Tree. It is safe for concurrent use.
type Host struct {
	mu       sync.RWMutex
	tree     *Tree
	byID     map[string]*NodeDef
	appNodes map[*AppDef]*NodeDef

	childrenCalls atomic.Int64
	prompts       atomic.Int64
}

// New builds a Host over tree.
func New(tree *Tree) (*Host, error) {
	h := &Host{
		tree:     tree,
		byID:     make(map[string]*NodeDef),
		appNodes: make(map[*AppDef]*NodeDef),
	}
	for _, app := range tree.Apps {
		title := app.Name
		if title == "" {
			title = app.BundleID
		}
		h.appNodes[app] = &NodeDef{
			Role:     "AXApplication",
			Title:    &title,
			Children: app.Children,
		}
		for _, w := range app.Windows {
			if err := h.index(w); err != nil {
				return nil, err
			}
		}
		for _, c := range app.Children {
			if err := h.index(c); err != nil {
				return nil, err
			}
		}
	}
	if err := h.checkRefs(); err != nil {
		return nil, err
	}
	return h, nil
}

// Parse decodes a YAML fixture from r.
func Parse(r io.Reader) (*Host, error) {
	tree := &Tree{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(tree); err != nil {
		return nil, fmt.Errorf("fixture: decode yaml: %w", err)
	}
	return New(tree)
}

// Load reads a YAML fixture file.
func Load(path string) (*Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %q: %w", path, err)
	}
	defer f.Close()
	h, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("fixture: parse %q: %w", path, err)
	}
	return h, nil
}

func (h *Host) index(def *NodeDef) error {
	if def.ID != "" {
		if _, dup := h.byID[def.ID]; dup {
			return fmt.Errorf("fixture: duplicate node id %q", def.ID)
		}
		h.byID[def.ID] = def
	}
	for _, c := range def.Children {
		if err := h.index(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) checkRefs() error {
	var walk func(def *NodeDef, seen map[*NodeDef]bool) error
	walk = func(def *NodeDef, seen map[*NodeDef]bool) error {
		if seen[def] {
			return nil
		}
		seen[def] = true
		if def.Ref != "" {
			if _, ok := h.byID[def.Ref]; !ok {
				return fmt.Errorf("fixture: ref %q does not name a node", def.Ref)
			}
		}
		for _, c := range def.Children {
			if err := walk(c, seen); err != nil {
				return err
			}
		}
		return nil
	}
	seen := make(map[*NodeDef]bool)
	for _, app := range h.tree.Apps {
		for _, w := range append(append([]*NodeDef{}, app.Windows...), app.Children...) {
			if err := walk(w, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChildrenCalls returns how many times Children has been called.
func (h *Host) ChildrenCalls() int64 {
	return h.childrenCalls.Load()
}

// Prompts returns how many times PromptForTrust has been called.
func (h *Host) Prompts() int64 {
	return h.prompts.Load()
}

// SetTrusted changes the permission state.
func (h *Host) SetTrusted(trusted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree.Trusted = &trusted
}

// SetRunning marks an application as running or terminated.
func (h *Host) SetRunning(bundleID string, running bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, app := range h.tree.Apps {
		if app.BundleID == bundleID {
			app.Running = &running
		}
	}
}

// SetFrontmost changes the frontmost application.
func (h *Host) SetFrontmost(bundleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree.Frontmost = bundleID
}

func (h *Host) IsTrusted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tree.Trusted == nil || *h.tree.Trusted
}

func (h *Host) PromptForTrust() {
	h.prompts.Add(1)
}

func (h *Host) FindRunningApplication(bundleID string) (platform.Node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, app := range h.tree.Apps {
		if app.BundleID == bundleID && isRunning(app) {
			return &node{def: h.appNodes[app], app: app}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", bundleID, platform.ErrTargetNotRunning)
}

func (h *Host) FocusedWindow(app platform.Node) (platform.Node, error) {
	n, err := h.resolve(app)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n.app == nil || n.def != h.appNodes[n.app] {
		return nil, fmt.Errorf("AXFocusedWindow: %w", platform.ErrAttributeUnavailable)
	}
	for _, w := range n.app.Windows {
		if w.ID != "" && w.ID == n.app.FocusedWindow {
			return &node{def: w, app: n.app}, nil
		}
	}
	return nil, fmt.Errorf("AXFocusedWindow: %w", platform.ErrAttributeUnavailable)
}

func (h *Host) Windows(app platform.Node) ([]platform.Node, error) {
	n, err := h.resolve(app)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n.app == nil || n.def != h.appNodes[n.app] || len(n.app.Windows) == 0 {
		return nil, fmt.Errorf("AXWindows: %w", platform.ErrAttributeUnavailable)
	}
	nodes := make([]platform.Node, 0, len(n.app.Windows))
	for _, w := range n.app.Windows {
		nodes = append(nodes, &node{def: w, app: n.app})
	}
	return nodes, nil
}

func (h *Host) Children(nd platform.Node) ([]platform.Node, error) {
	h.childrenCalls.Add(1)
	n, err := h.resolve(nd)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	nodes := make([]platform.Node, 0, len(n.def.Children))
	for _, c := range n.def.Children {
		if c.Ref != "" {
			c = h.byID[c.Ref]
		}
		nodes = append(nodes, &node{def: c, app: n.app})
	}
	return nodes, nil
}

func (h *Host) StringAttr(nd platform.Node, name string) (string, error) {
	n, err := h.resolve(nd)
	if err != nil {
		return "", err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	var v *string
	switch name {
	case platform.AttrRole:
		if n.def.Role != "" {
			v = &n.def.Role
		}
	case platform.AttrTitle:
		v = n.def.Title
	case platform.AttrValue:
		v = n.def.Value
	case platform.AttrDescription:
		v = n.def.Description
	case platform.AttrIdentifier:
		v = n.def.Identifier
	}
	if v == nil {
		return "", fmt.Errorf("%s: %w", name, platform.ErrAttributeUnavailable)
	}
	return *v, nil
}

func (h *Host) BoolAttr(nd platform.Node, name string) (bool, error) {
	n, err := h.resolve(nd)
	if err != nil {
		return false, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	var v *bool
	switch name {
	case platform.AttrEnabled:
		v = n.def.Enabled
	case platform.AttrFocused:
		v = n.def.Focused
	}
	if v == nil {
		return false, fmt.Errorf("%s: %w", name, platform.ErrAttributeUnavailable)
	}
	return *v, nil
}

func (h *Host) PointAttr(nd platform.Node, name string) (model.Point, error) {
	n, err := h.resolve(nd)
	if err != nil {
		return model.Point{}, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if name != platform.AttrPosition || n.def.Position == nil {
		return model.Point{}, fmt.Errorf("%s: %w", name, platform.ErrAttributeUnavailable)
	}
	return *n.def.Position, nil
}

func (h *Host) SizeAttr(nd platform.Node, name string) (model.Size, error) {
	n, err := h.resolve(nd)
	if err != nil {
		return model.Size{}, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if name != platform.AttrSize || n.def.Size == nil {
		return model.Size{}, fmt.Errorf("%s: %w", name, platform.ErrAttributeUnavailable)
	}
	return *n.def.Size, nil
}

func (h *Host) SetStringAttr(nd platform.Node, name, value string) error {
	if !h.IsTrusted() {
		return platform.ErrPermissionDenied
	}
	n, err := h.resolve(nd)
	if err != nil {
		return err
	}
	if name != platform.AttrValue {
		return fmt.Errorf("%s is not settable", name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	v := value
	n.def.Value = &v
	return nil
}

func (h *Host) MainScreenSize() (model.Size, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tree.Screen.Width <= 0 || h.tree.Screen.Height <= 0 {
		return model.Size{}, fmt.Errorf("main display size unavailable")
	}
	return h.tree.Screen, nil
}

func (h *Host) FrontmostBundleID() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tree.Frontmost == "" {
		return "", fmt.Errorf("no frontmost application")
	}
	return h.tree.Frontmost, nil
}

// resolve validates a handle. Nodes of terminated applications are invalid.
func (h *Host) resolve(nd platform.Node) (*node, error) {
	n, ok := nd.(*node)
	if !ok || n == nil || n.def == nil {
		return nil, platform.ErrInvalidNode
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n.app != nil && !isRunning(n.app) {
		return nil, platform.ErrInvalidNode
	}
	return n, nil
}

func isRunning(app *AppDef) bool {
	return app.Running == nil || *app.Running
}
